package account

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryStore creates a concurrency-safe in-memory account store, used in
// development mode and unit tests.
func NewMemoryStore() Store {
	return &memoryStore{accounts: make(map[string]Account)}
}

func (s *memoryStore) Create(_ context.Context, acc Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = acc
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (s *memoryStore) ApplyDelta(_ context.Context, id string, delta int64, expectedVersion int64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	if acc.Version != expectedVersion {
		return Account{}, ErrVersionConflict
	}
	if acc.Balance+delta < 0 {
		return Account{}, ErrInsufficientFunds
	}

	acc.Balance += delta
	acc.Version++
	s.accounts[id] = acc
	return acc, nil
}
