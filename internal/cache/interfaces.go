package cache

import (
	"context"
	"time"
)

// Cache is the read-through cache used for slow-changing lookup data such
// as the city and suburb lists. Values are opaque byte slices; callers own
// the serialization.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// GetOrSet retrieves a value, or computes and stores it on a miss.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)
}

// CacheError is a sentinel error type for cache operations.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"
