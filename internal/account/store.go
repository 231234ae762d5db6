package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when a delta would take the balance below zero.
	// The mutation is rejected outright, never clamped.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrVersionConflict indicates the conditional write lost a race: the
	// account version changed between read and write.
	ErrVersionConflict = errors.New("version conflict")

	// ErrConcurrencyExhausted is returned once bounded optimistic retries
	// are used up without an accepted write.
	ErrConcurrencyExhausted = errors.New("concurrent updates exhausted retries")
)

// Store persists accounts. ApplyDelta is the only balance write path; it must
// be a conditional write keyed on expectedVersion so that concurrent mutations
// are detected rather than silently interleaved.
type Store interface {
	Create(ctx context.Context, acc Account) error
	Get(ctx context.Context, id string) (Account, error)
	// ApplyDelta adds delta to the balance iff the stored version equals
	// expectedVersion and the resulting balance is non-negative. On success
	// it returns the account with the new balance and version. It fails with
	// ErrVersionConflict or ErrInsufficientFunds otherwise.
	ApplyDelta(ctx context.Context, id string, delta int64, expectedVersion int64) (Account, error)
}
