package media

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is a local-only playback reference to a finished recording, the
// server-side analog of an object URL. It is owned by the capture session
// that minted it and must be released when superseded or discarded.
// Release is idempotent.
type Handle struct {
	ID          string
	ContentType string

	reg  *HandleRegistry
	once sync.Once
}

// Release frees the blob behind the handle. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.reg.drop(h.ID)
	})
}

// HandleRegistry maps handle IDs to recording bytes so a playback route
// can serve them back to the client that recorded them.
type HandleRegistry struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	types map[string]string
}

// NewHandleRegistry creates an empty registry.
func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

// Mint stores blob and returns a new owned handle for it.
func (r *HandleRegistry) Mint(blob []byte, contentType string) *Handle {
	id := uuid.NewString()
	r.mu.Lock()
	r.blobs[id] = blob
	r.types[id] = contentType
	r.mu.Unlock()
	return &Handle{ID: id, ContentType: contentType, reg: r}
}

// Get returns the blob and content type for id, or false if the handle
// was never minted or has been released.
func (r *HandleRegistry) Get(id string) ([]byte, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.blobs[id]
	return blob, r.types[id], ok
}

// Len reports how many live handles the registry holds.
func (r *HandleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

func (r *HandleRegistry) drop(id string) {
	r.mu.Lock()
	delete(r.blobs, id)
	delete(r.types, id)
	r.mu.Unlock()
}
