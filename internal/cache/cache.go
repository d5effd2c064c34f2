// Package cache provides process-wide TTL memoization of fetched rate data.
// The contract is at-most-TTL staleness, not at-most-one fetch: concurrent
// callers may both run the producer for a cold key.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the one-hour staleness window of the dashboards.
const DefaultTTL = time.Hour

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache memoizes values by string key with a fixed expiry.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates a cache; ttl <= 0 falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrFetch returns the live cached value for key, or invokes producer and
// stores its result. Producer errors are returned without being cached.
func (c *Cache) GetOrFetch(key string, producer func() (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.value, nil
	}

	v, err := producer()
	if err != nil {
		return nil, err
	}
	c.Put(key, v)
	return v, nil
}

// Put stores value under key, resetting its age. Used by scheduled warms.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
