package kv

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is a TTL key-value store. The production implementation is Redis so
// counters and cache entries are shared across instances and survive
// restarts; tests use the in-memory implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Incr increments the counter at key and starts the ttl window when the
	// counter is created. It returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL returns the remaining lifetime of key, or 0 when the key does not
	// exist or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
