package job

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryStore creates a concurrency-safe in-memory job store, used in
// development mode and unit tests.
func NewMemoryStore() Store {
	return &memoryStore{jobs: make(map[string]Job)}
}

func (s *memoryStore) Create(_ context.Context, j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (s *memoryStore) MarkPaid(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Paid {
		return ErrAlreadyPaid
	}
	paidAt := at.UTC()
	j.Paid = true
	j.PaidAt = &paidAt
	s.jobs[id] = j
	return nil
}

func (s *memoryStore) UnmarkPaid(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Paid = false
	j.PaidAt = nil
	s.jobs[id] = j
	return nil
}

func (s *memoryStore) SetLock(_ context.Context, id, holder string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	exp := expiry.UTC()
	j.LockHolder = &holder
	j.LockExpiry = &exp
	s.jobs[id] = j
	return nil
}

func (s *memoryStore) ClearLock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.LockHolder = nil
	j.LockExpiry = nil
	s.jobs[id] = j
	return nil
}
