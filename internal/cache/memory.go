package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached value with its expiry deadline.
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is an in-process Cache for single-instance deployments. The
// location lists it holds are tiny, so there is no size bound; expired
// entries are swept by a background janitor.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	stopJanitor chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache with background expiry.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries:     make(map[string]*entry),
		stopJanitor: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get retrieves a value by key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a value with the given TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = &entry{value: stored, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes a value by key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// GetOrSet retrieves a value, or computes and stores it on a miss. The
// compute function runs outside the lock; concurrent misses on the same key
// may compute twice, last write wins.
func (c *MemoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return nil, err
	}
	return v, nil
}

// Close stops the background janitor.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopJanitor) })
	return nil
}

func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopJanitor:
			return
		}
	}
}
