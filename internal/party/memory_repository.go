package party

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	parties map[string]Party
}

// NewMemoryRepository creates an in-memory repository for development mode
// and unit tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{parties: make(map[string]Party)}
}

func (r *memoryRepository) Create(_ context.Context, p Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parties[p.ID] = p
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parties[id]
	if !ok {
		return Party{}, ErrNotFound
	}
	return p, nil
}
