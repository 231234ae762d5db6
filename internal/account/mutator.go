package account

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mutator is the single permitted path for changing account balances. It
// wraps the store's conditional write with bounded optimistic retries.
type Mutator struct {
	store       Store
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(context.Context, time.Duration) error
}

// NewMutator constructs a Mutator. maxAttempts below one is treated as one;
// a zero baseDelay disables backoff between attempts.
func NewMutator(store Store, maxAttempts int, baseDelay time.Duration) *Mutator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Mutator{
		store:       store,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepWithContext,
	}
}

// ApplyDelta attempts a single conditional write. When expectedVersion is
// negative the current version is read first, so the caller pays one extra
// round trip for not pinning a version.
func (m *Mutator) ApplyDelta(ctx context.Context, id string, delta int64, expectedVersion int64) (Account, error) {
	if expectedVersion < 0 {
		current, err := m.store.Get(ctx, id)
		if err != nil {
			return Account{}, err
		}
		expectedVersion = current.Version
	}
	return m.store.ApplyDelta(ctx, id, delta, expectedVersion)
}

// UpdateWithRetry re-reads the current version and retries the conditional
// write until it is accepted or attempts run out. Backoff grows linearly with
// the attempt number to spread contending writers. Insufficient funds is a
// terminal business outcome and is never retried.
func (m *Mutator) UpdateWithRetry(ctx context.Context, id string, delta int64) (Account, error) {
	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		acc, err := m.ApplyDelta(ctx, id, delta, -1)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return Account{}, err
		}
		lastErr = err

		if attempt < m.maxAttempts && m.baseDelay > 0 {
			if err := m.sleep(ctx, m.baseDelay*time.Duration(attempt)); err != nil {
				return Account{}, err
			}
		}
	}
	return Account{}, fmt.Errorf("apply delta to account %s: %w", id, joinRetryErr(lastErr))
}

func joinRetryErr(last error) error {
	if last == nil {
		return ErrConcurrencyExhausted
	}
	return fmt.Errorf("%w: %v", ErrConcurrencyExhausted, last)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
