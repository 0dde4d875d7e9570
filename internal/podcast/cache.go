package podcast

import (
	"sync"
	"time"
)

// entry pairs a cached value with its insertion time.
type entry[T any] struct {
	value      T
	insertedAt time.Time
}

// Cache is a TTL-bounded map from fingerprint to value, thread-safe for
// concurrent readers and writers (spec §4.5). podrelayd uses it for the
// podcast cache (Podcast values); default views are cached separately by
// DefaultViewStore. The value type is a type parameter.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
	now     func() time.Time
}

// NewCache builds a Cache with the given TTL. now defaults to time.Now;
// tests may override it to avoid sleeping.
func NewCache[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     now,
	}
}

// Get returns the cached value for key if present and not expired. A stale
// entry is evicted on the way out (spec §4.5: "lazily evicted on lookup").
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Insert stores value under key and, if scrub is true, also evicts every
// other expired entry (spec §4.5: "insertions may piggyback a scrub").
func (c *Cache[T]) Insert(key string, value T, scrub bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{value: value, insertedAt: c.now()}
	if !scrub {
		return
	}
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
}

// Len reports the current entry count, including not-yet-evicted stale
// entries — useful for tests and metrics, not for correctness.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
