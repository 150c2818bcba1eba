// Package register provides the shared, process-external key/value register
// spec.md §5 requires for two purposes: rate-limit last-call timestamps
// (internal/events, internal/indicators) and scheduler last_run_at entries
// plus advisory per-task locks (internal/coordinator). A single abstraction
// backs both, keyed by prefix, mirroring the Redis-wrapper shape of
// libs/marketdata/cache.go.
package register

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by GetTimestamp when the key has never been set
// or its TTL has expired.
var ErrNotFound = errors.New("register: key not found")

// ErrLocked is returned by TryLock when another holder already owns the
// advisory lock.
var ErrLocked = errors.New("register: key already locked")

// Register is the shared process-external key/value store. Implementations:
// RedisRegister (production, REDIS_URL set) and MemoryRegister (single-node
// fallback when REDIS_URL is unset).
type Register interface {
	// GetTimestamp returns the time stored at key, or ErrNotFound.
	GetTimestamp(ctx context.Context, key string) (time.Time, error)
	// SetTimestamp atomically stores t at key with the given TTL (0 = no expiry).
	SetTimestamp(ctx context.Context, key string, t time.Time, ttl time.Duration) error
	// TryLock attempts to acquire an advisory lock on key for the given TTL.
	// It returns a release function that must be called on every exit path.
	// ErrLocked is returned if the lock is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), err error)
	// Close releases any underlying connection.
	Close() error
}
