package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryLock struct {
	token   string
	expires time.Time
}

// MemoryLocker is a single-process Locker for development mode and unit
// tests. It does not provide cross-instance exclusivity; deployments with
// more than one service instance must use RedisLocker.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

// NewMemoryLocker constructs an in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryLock), now: time.Now}
}

// Acquire claims the key if absent or expired.
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && l.now().Before(held.expires) {
		return "", ErrNotAcquired
	}

	token := uuid.NewString()
	l.locks[key] = memoryLock{token: token, expires: l.now().Add(ttl)}
	return token, nil
}

// Release removes the lock when the token matches; otherwise it is a no-op.
func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && held.token == token {
		delete(l.locks, key)
	}
	return nil
}

// Held reports whether the key has a live, unexpired holder.
func (l *MemoryLocker) Held(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	held, ok := l.locks[key]
	if !ok {
		return false, nil
	}
	if !l.now().Before(held.expires) {
		delete(l.locks, key)
		return false, nil
	}
	return true, nil
}
