// Package cache provides the in-memory TTL store that holds budget
// sessions. Nothing is persisted: an entry not touched within its TTL is
// gone.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// EvictFunc is called after an entry leaves the cache, whether it expired
// or was deleted. It runs without the cache lock held.
type EvictFunc[T any] func(key string, value T)

// InMemory is a thread-safe in-memory cache with sliding TTL: every Set
// or Touch pushes the expiry forward.
type InMemory[T any] struct {
	mu      sync.RWMutex
	items   map[string]entry[T]
	ttl     time.Duration
	onEvict EvictFunc[T]
	stop    chan struct{}
	once    sync.Once
}

// New creates a new in-memory cache with the given TTL.
func New[T any](ttl time.Duration) *InMemory[T] {
	return NewWithEviction[T](ttl, nil)
}

// NewWithEviction creates a cache that reports evictions to onEvict.
func NewWithEviction[T any](ttl time.Duration, onEvict EvictFunc[T]) *InMemory[T] {
	c := &InMemory[T]{
		items:   make(map[string]entry[T]),
		ttl:     ttl,
		onEvict: onEvict,
		stop:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Touch pushes the expiry of a live entry forward. It reports false, and
// stores nothing, when the key is absent or already expired.
func (c *InMemory[T]) Touch(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	now := time.Now()
	if !ok || now.After(e.expiresAt) {
		return false
	}
	e.expiresAt = now.Add(c.ttl)
	c.items[key] = e
	return true
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	e, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()

	if ok && c.onEvict != nil {
		c.onEvict(key, e.value)
	}
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// TTL returns the configured entry lifetime.
func (c *InMemory[T]) TTL() time.Duration {
	return c.ttl
}

// Close stops the background sweeper.
func (c *InMemory[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// janitor periodically removes expired entries.
func (c *InMemory[T]) janitor() {
	interval := c.ttl
	if interval < time.Second {
		interval = c.ttl / 2
	}
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemory[T]) sweep() {
	type evicted struct {
		key   string
		value T
	}
	var gone []evicted

	c.mu.Lock()
	now := time.Now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
			gone = append(gone, evicted{k, v.value})
		}
	}
	c.mu.Unlock()

	if c.onEvict == nil {
		return
	}
	for _, e := range gone {
		c.onEvict(e.key, e.value)
	}
}
