// Package cache provides a small TTL memoization cache with bounded
// capacity. A Cache is constructed explicitly and passed to consumers;
// there is no package-level singleton.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultTTL is applied to entries stored without an explicit TTL.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 100
)

type entry[T any] struct {
	value     T
	storedAt  time.Time
	expiresAt time.Time
}

// Cache is a capacity-bounded TTL cache. Expired entries are evicted lazily
// on access; on overflow the oldest 20% of entries by insertion time are
// dropped before the new entry is stored.
type Cache[T any] struct {
	mu       sync.Mutex
	entries  map[string]entry[T]
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithTTL overrides the default entry TTL.
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(c *Cache[T]) { c.ttl = ttl }
}

// WithCapacity overrides the default capacity.
func WithCapacity[T any](capacity int) Option[T] {
	return func(c *Cache[T]) { c.capacity = capacity }
}

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) { c.now = now }
}

// New creates a Cache with the default TTL and capacity.
func New[T any](opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		entries:  make(map[string]entry[T]),
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, or the zero value and false when the
// key is absent or expired. Expired entries are removed on access.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Has reports whether key holds a live entry.
func (c *Cache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache[T]) SetTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	now := c.now()
	c.entries[key] = entry[T]{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
}

// evictOldest drops the oldest 20% of entries by insertion time.
// Caller holds c.mu.
func (c *Cache[T]) evictOldest() {
	type aged struct {
		key      string
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for key, e := range c.entries {
		all = append(all, aged{key, e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].storedAt.Before(all[j].storedAt)
	})

	drop := len(all) / 5
	if drop < 1 {
		drop = 1
	}
	for i := 0; i < drop; i++ {
		delete(c.entries, all[i].key)
	}
}

// Delete removes key from the cache.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, including any not yet lazily
// evicted.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetch returns the cached value for key or, on a miss, invokes fetch,
// stores the result under key and returns it. An optional ttl overrides the
// cache-wide TTL for that stored entry. Concurrent calls for the same key
// before the first fetch resolves are not deduplicated; each runs its own
// fetch and the last writer wins.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error), ttl ...time.Duration) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(ttl) > 0 {
		c.SetTTL(key, v, ttl[0])
	} else {
		c.Set(key, v)
	}
	return v, nil
}
