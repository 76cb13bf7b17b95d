// Package cache provides a generic in-memory cache with per-entry TTLs.
// The clock is injectable so tests can control expiry deterministically.
package cache

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock { return realClock{} }

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	items   map[K]item[V]
	clock   Clock
	done    chan struct{}
	closeMu sync.Once
}

// New creates a cache that evicts expired entries every cleanupInterval.
func New[K comparable, V any](cleanupInterval time.Duration) *Cache[K, V] {
	return NewWithClock[K, V](cleanupInterval, RealClock())
}

// NewWithClock creates a cache with an explicit clock. A cleanupInterval of 0
// disables the background sweeper; expired entries are then only dropped lazily.
func NewWithClock[K comparable, V any](cleanupInterval time.Duration, clock Clock) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]item[V]),
		clock: clock,
		done:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.sweep(cleanupInterval)
	}

	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.clock.Now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value under key for ttl.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = item[V]{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, or runs compute, stores the
// result for ttl, and returns it. Concurrent callers for the same missing key
// may compute more than once; the last write wins.
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, key K, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(ctx, key, v, ttl)
	return v, nil
}

// Delete removes key from the cache.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-swept expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background sweeper.
func (c *Cache[K, V]) Close() {
	c.closeMu.Do(func() { close(c.done) })
}

func (c *Cache[K, V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := c.clock.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if now.After(it.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
