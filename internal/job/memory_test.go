package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_MarkPaidOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	j := Job{ID: "job-1", ClientID: "c-1", ContractorID: "k-1", Amount: 500, Currency: "USD", CreatedAt: time.Now().UTC()}
	if err := store.Create(ctx, j); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	if err := store.MarkPaid(ctx, "job-1", now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if err := store.MarkPaid(ctx, "job-1", now); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}

	got, _ := store.Get(ctx, "job-1")
	if !got.Paid || got.PaidAt == nil {
		t.Fatalf("expected paid job, got %+v", got)
	}
}

func TestMemoryStore_MarkPaidConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, Job{ID: "job-1", Amount: 100, Currency: "USD"})

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.MarkPaid(ctx, "job-1", time.Now().UTC()); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if n := len(wins); n != 1 {
		t.Fatalf("expected exactly one winner, got %d", n)
	}
}

func TestMemoryStore_UnmarkPaid(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, Job{ID: "job-1", Amount: 100, Currency: "USD"})

	store.MarkPaid(ctx, "job-1", time.Now().UTC())
	if err := store.UnmarkPaid(ctx, "job-1"); err != nil {
		t.Fatalf("unmark paid: %v", err)
	}

	got, _ := store.Get(ctx, "job-1")
	if got.Paid || got.PaidAt != nil {
		t.Fatalf("expected unpaid job, got %+v", got)
	}
}

func TestMemoryStore_LockColumns(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, Job{ID: "job-1", Amount: 100, Currency: "USD"})

	expiry := time.Now().Add(30 * time.Second)
	if err := store.SetLock(ctx, "job-1", "token-1", expiry); err != nil {
		t.Fatalf("set lock: %v", err)
	}
	got, _ := store.Get(ctx, "job-1")
	if got.LockHolder == nil || *got.LockHolder != "token-1" {
		t.Fatalf("expected lock holder recorded, got %+v", got)
	}

	if err := store.ClearLock(ctx, "job-1"); err != nil {
		t.Fatalf("clear lock: %v", err)
	}
	got, _ = store.Get(ctx, "job-1")
	if got.LockHolder != nil || got.LockExpiry != nil {
		t.Fatalf("expected cleared lock, got %+v", got)
	}
}
