package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe keyed memo with a TTL and tag invalidation.
type Cache[K comparable, V any] struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	m    map[K]entry[V]
	tags map[string]map[K]struct{}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// New creates a cache whose entries expire after ttl (0 = never).
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:  ttl,
		now:  time.Now,
		m:    make(map[K]entry[V]),
		tags: make(map[string]map[K]struct{}),
	}
}

// Set stores value under key and assigns it to the given tags.
func (c *Cache[K, V]) Set(key K, value V, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.m[key] = e
	for _, tag := range tags {
		set, ok := c.tags[tag]
		if !ok {
			set = make(map[K]struct{})
			c.tags[tag] = set
		}
		set[key] = struct{}{}
	}
}

// Get returns (value, true) if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.Delete(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// DeleteByTag removes every entry assigned to tag.
func (c *Cache[K, V]) DeleteByTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		delete(c.m, key)
	}
	delete(c.tags, tag)
}

// Len counts stored entries, expired ones included until they are read.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
