package job

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the job does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrAlreadyPaid indicates the paid flag was already set. The flag is a
	// one-way transition, so a second MarkPaid is always a conflict.
	ErrAlreadyPaid = errors.New("job already paid")
)

// Store persists jobs. MarkPaid must be conditional on paid=false so that two
// racing payouts cannot both observe success.
type Store interface {
	Create(ctx context.Context, j Job) error
	Get(ctx context.Context, id string) (Job, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
	// UnmarkPaid reverts the paid flag during saga compensation. It is not
	// part of the public payment flow.
	UnmarkPaid(ctx context.Context, id string) error
	// SetLock and ClearLock record the current distributed lock holder for
	// crash visibility. They are informational; the lock service is the
	// authority on exclusivity.
	SetLock(ctx context.Context, id, holder string, expiry time.Time) error
	ClearLock(ctx context.Context, id string) error
}
