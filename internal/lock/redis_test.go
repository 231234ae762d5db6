package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLocker(client), mr
}

func TestRedisLocker_Exclusive(t *testing.T) {
	locker, _ := setupRedisLocker(t)
	ctx := context.Background()

	token, err := locker.Acquire(ctx, "job-42", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a holder token")
	}

	if _, err := locker.Acquire(ctx, "job-42", time.Minute); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected refusal while held, got %v", err)
	}

	held, err := locker.Held(ctx, "job-42")
	if err != nil {
		t.Fatalf("held: %v", err)
	}
	if !held {
		t.Fatalf("expected lock to be held")
	}
}

func TestRedisLocker_ReleaseRequiresMatchingToken(t *testing.T) {
	locker, _ := setupRedisLocker(t)
	ctx := context.Background()

	token, err := locker.Acquire(ctx, "job-42", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// A stale token must not release someone else's lock.
	if err := locker.Release(ctx, "job-42", "stale-token"); err != nil {
		t.Fatalf("release with stale token: %v", err)
	}
	if held, _ := locker.Held(ctx, "job-42"); !held {
		t.Fatalf("stale release must be a no-op")
	}

	if err := locker.Release(ctx, "job-42", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if held, _ := locker.Held(ctx, "job-42"); held {
		t.Fatalf("expected lock released")
	}
}

func TestRedisLocker_TTLExpiryFreesKey(t *testing.T) {
	locker, mr := setupRedisLocker(t)
	ctx := context.Background()

	if _, err := locker.Acquire(ctx, "job-42", time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := locker.Acquire(ctx, "job-42", time.Second); err != nil {
		t.Fatalf("expected acquisition after expiry, got %v", err)
	}
}

func TestRedisLocker_ExpiredHolderCannotReleaseNewLock(t *testing.T) {
	locker, mr := setupRedisLocker(t)
	ctx := context.Background()

	oldToken, err := locker.Acquire(ctx, "job-42", time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := locker.Acquire(ctx, "job-42", time.Minute); err != nil {
		t.Fatalf("re-acquire: %v", err)
	}

	if err := locker.Release(ctx, "job-42", oldToken); err != nil {
		t.Fatalf("release with expired token: %v", err)
	}
	if held, _ := locker.Held(ctx, "job-42"); !held {
		t.Fatalf("expired holder must not release the successor's lock")
	}
}
