// Package cache provides the process-wide value cache used to avoid repeated
// directory lookups. Keys are opaque strings built by callers, e.g.
// "profile:42" or "search-filters:42".
package cache

import (
	"sync"
	"time"

	"proconnect/backend/internal/ttlstore"
)

const (
	// DefaultTTL applies when a caller passes a non-positive TTL.
	DefaultTTL = 5 * time.Minute

	// MaxEntries bounds the cache; beyond it the oldest-inserted entry is
	// evicted.
	MaxEntries = 1000
)

// Stats reports cumulative cache traffic. Counters reset only on Clear.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is a bounded TTL cache with hit/miss accounting.
type Cache struct {
	store *ttlstore.Store[string, any]

	mu     sync.Mutex
	hits   int64
	misses int64
}

// New creates a cache bounded to MaxEntries.
func New() *Cache {
	return &Cache{
		store: ttlstore.NewBounded[string, any](MaxEntries),
	}
}

// Get returns the cached value for key, counting a hit or miss.
func (c *Cache) Get(key string) (any, bool) {
	value, ok := c.store.Get(key)

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	return value, ok
}

// Set stores value under key. A non-positive TTL falls back to DefaultTTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.store.Set(key, value, ttl)
}

// Has reports whether key is cached without affecting the counters.
func (c *Cache) Has(key string) bool {
	return c.store.Has(key)
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	return c.store.Delete(key)
}

// Clear empties the cache and resets the traffic counters.
func (c *Cache) Clear() {
	c.store.Clear()

	c.mu.Lock()
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()
}

// Sweep removes expired entries; run periodically to bound memory.
func (c *Cache) Sweep() int {
	return c.store.Sweep()
}

// GetStats returns a snapshot of the cache counters. The hit rate is a
// percentage and is zero before any traffic.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	stats := Stats{Hits: hits, Misses: misses, Size: c.store.Len()}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total) * 100
	}
	return stats
}
