package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestAccount(id string, role Role, balance int64) Account {
	return Account{
		ID:        id,
		OwnerID:   "owner-" + id,
		Role:      role,
		Currency:  "USD",
		Balance:   balance,
		Version:   0,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_ApplyDelta(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, newTestAccount("acc-1", RoleClient, 1_000)); err != nil {
		t.Fatalf("create: %v", err)
	}

	acc, err := store.ApplyDelta(ctx, "acc-1", -400, 0)
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if acc.Balance != 600 {
		t.Fatalf("expected balance 600, got %d", acc.Balance)
	}
	if acc.Version != 1 {
		t.Fatalf("expected version 1, got %d", acc.Version)
	}
}

func TestMemoryStore_ApplyDeltaVersionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, newTestAccount("acc-1", RoleClient, 1_000))

	if _, err := store.ApplyDelta(ctx, "acc-1", -100, 0); err != nil {
		t.Fatalf("first delta: %v", err)
	}
	if _, err := store.ApplyDelta(ctx, "acc-1", -100, 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestMemoryStore_ApplyDeltaRejectsOverdraft(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, newTestAccount("acc-1", RoleClient, 100))

	if _, err := store.ApplyDelta(ctx, "acc-1", -500, 0); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	acc, _ := store.Get(ctx, "acc-1")
	if acc.Balance != 100 || acc.Version != 0 {
		t.Fatalf("rejected mutation must not move the account: %+v", acc)
	}
}

func TestMutator_UpdateWithRetryConvergesUnderContention(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, newTestAccount("acc-1", RoleContractor, 0))

	mutator := NewMutator(store, 50, 0)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mutator.UpdateWithRetry(ctx, "acc-1", 10); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	acc, _ := store.Get(ctx, "acc-1")
	if acc.Balance != workers*10 {
		t.Fatalf("expected balance %d, got %d", workers*10, acc.Balance)
	}
	if acc.Version != workers {
		t.Fatalf("expected version %d after %d accepted mutations, got %d", workers, workers, acc.Version)
	}
}

func TestMutator_UpdateWithRetryExhaustion(t *testing.T) {
	store := &conflictingStore{Store: NewMemoryStore()}
	ctx := context.Background()
	store.Store.Create(ctx, newTestAccount("acc-1", RoleClient, 1_000))

	mutator := NewMutator(store, 3, time.Millisecond)
	var delays []time.Duration
	mutator.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := mutator.UpdateWithRetry(ctx, "acc-1", -100)
	if !errors.Is(err, ErrConcurrencyExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.attempts)
	}
	// Linear backoff: base*1, base*2.
	if len(delays) != 2 || delays[0] != time.Millisecond || delays[1] != 2*time.Millisecond {
		t.Fatalf("unexpected backoff schedule: %v", delays)
	}
}

func TestMutator_InsufficientFundsNotRetried(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, newTestAccount("acc-1", RoleClient, 100))

	mutator := NewMutator(store, 5, 0)
	if _, err := mutator.UpdateWithRetry(ctx, "acc-1", -500); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

// conflictingStore forces every conditional write to lose its race.
type conflictingStore struct {
	Store
	attempts int
}

func (s *conflictingStore) ApplyDelta(context.Context, string, int64, int64) (Account, error) {
	s.attempts++
	return Account{}, ErrVersionConflict
}
