package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyLock implements per-object-key exclusive leases backed by Redis. The
// trash manager takes a lease around its check-copy-delete sequences so two
// instances cannot interleave on the same object key.
type KeyLock struct {
	client         *redis.Client
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

// New creates a KeyLock.
//   - prefix: namespace for the lease keys (e.g. "media_vault:key_lock:")
//   - ttl: how long a lease is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire a lease
func New(client *redis.Client, prefix string, ttl, acquireTimeout time.Duration) *KeyLock {
	return &KeyLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire attempts to lease objKey, blocking with exponential backoff until
// success or timeout. Returns a unique lockID used for Release.
func (l *KeyLock) Acquire(ctx context.Context, objKey string) (string, error) {
	lockID := uuid.New().String()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, l.prefix+objKey, lockID, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return lockID, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout acquiring lease on %s after %s", objKey, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript atomically checks that the lease value matches before deleting,
// preventing a client from releasing a lease it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release releases the lease on objKey only if it is still owned by lockID.
func (l *KeyLock) Release(ctx context.Context, objKey, lockID string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.prefix + objKey}, lockID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}
