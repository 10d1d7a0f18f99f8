package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

// MemoryRepository keeps attempts as marshaled JSON per collection, the
// same round trip a persisted backend performs, so tests exercise the
// exact serialization a reload would see.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]json.RawMessage
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]json.RawMessage)}
}

// Append marshals the attempt and appends it to the collection.
func (m *MemoryRepository) Append(ctx context.Context, collection string, attempt domain.Attempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	m.mu.Lock()
	m.data[collection] = append(m.data[collection], raw)
	m.mu.Unlock()
	return nil
}

// LoadAll returns every attempt in the collection in insertion order.
func (m *MemoryRepository) LoadAll(ctx context.Context, collection string) ([]domain.Attempt, error) {
	m.mu.RLock()
	raws := m.data[collection]
	m.mu.RUnlock()

	attempts := make([]domain.Attempt, 0, len(raws))
	for _, raw := range raws {
		var a domain.Attempt
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
