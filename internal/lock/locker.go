package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired signals the key is currently held by a live token. It is a
// normal "try later" outcome, not a fault; callers that want blocking
// behavior implement their own bounded retry loop.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker grants time-bounded exclusive locks usable across process instances.
// The TTL guarantees forward progress if a holder crashes mid-flight; holders
// are still expected to release explicitly on every exit path.
type Locker interface {
	// Acquire atomically claims the key if absent and returns the holder
	// token. It fails fast with ErrNotAcquired when the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Release removes the lock only if token still matches the stored
	// holder; a stale token is a no-op. This prevents a slow holder from
	// releasing a lock that expired and was re-acquired elsewhere.
	Release(ctx context.Context, key, token string) error
	// Held reports whether the key currently has a live holder.
	Held(ctx context.Context, key string) (bool, error)
}
