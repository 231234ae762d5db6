package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryLocker_SingleWinnerUnderContention(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	tokens := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if token, err := locker.Acquire(ctx, "job-42", time.Minute); err == nil {
				tokens <- token
			}
		}()
	}
	wg.Wait()
	close(tokens)

	if n := len(tokens); n != 1 {
		t.Fatalf("expected exactly one token granted, got %d", n)
	}
}

func TestMemoryLocker_ExpiryAllowsReacquire(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	now := time.Now()
	locker.now = func() time.Time { return now }

	token, err := locker.Acquire(ctx, "job-42", time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if _, err := locker.Acquire(ctx, "job-42", time.Second); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected refusal, got %v", err)
	}

	now = now.Add(2 * time.Second)

	next, err := locker.Acquire(ctx, "job-42", time.Second)
	if err != nil {
		t.Fatalf("expected acquisition after expiry, got %v", err)
	}

	// The original holder's release must not evict the new holder.
	if err := locker.Release(ctx, "job-42", token); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if held, _ := locker.Held(ctx, "job-42"); !held {
		t.Fatalf("stale release evicted the live holder")
	}

	if err := locker.Release(ctx, "job-42", next); err != nil {
		t.Fatalf("release: %v", err)
	}
	if held, _ := locker.Held(ctx, "job-42"); held {
		t.Fatalf("expected lock released")
	}
}
