package generate

import (
	"sync"

	"github.com/google/uuid"
)

// Old sets are evicted oldest-first past this count; an abandoned
// interview setup should not pin its questions forever.
const retainedSets = 256

// SetRegistry holds live question sets by id so the skip and regenerate
// endpoints can replace entries in the same set the questions were
// generated into.
type SetRegistry struct {
	mu    sync.Mutex
	sets  map[string]*QuestionSet
	order []string
}

// NewSetRegistry creates an empty registry.
func NewSetRegistry() *SetRegistry {
	return &SetRegistry{sets: make(map[string]*QuestionSet)}
}

// Put stores a set and returns its id.
func (r *SetRegistry) Put(set *QuestionSet) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[id] = set
	r.order = append(r.order, id)
	for len(r.order) > retainedSets {
		delete(r.sets, r.order[0])
		r.order = r.order[1:]
	}
	return id
}

// Get returns the set with the given id.
func (r *SetRegistry) Get(id string) (*QuestionSet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	return set, ok
}

// Len returns the number of live sets.
func (r *SetRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}
