// Package ttlstore provides a mutex-guarded in-memory map whose entries carry
// a time-to-live. It is the shared substrate for conversation sessions, cache
// entries and rate-limit bookkeeping.
package ttlstore

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry[V]) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// Store maps keys to values with per-entry TTLs. Reads of expired entries
// behave as misses and remove the entry, so correctness never depends on
// Sweep being called. A zero maxSize means unbounded; otherwise Set evicts
// the oldest-inserted entry when the store is full.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	maxSize int

	now func() time.Time
}

// New creates an unbounded store.
func New[K comparable, V any]() *Store[K, V] {
	return NewBounded[K, V](0)
}

// NewBounded creates a store that holds at most maxSize entries.
func NewBounded[K comparable, V any](maxSize int) *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]entry[V]),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// WithClock overrides the store's time source. Owners that inject their own
// clock pass it through here so expiry follows the same time.
func (s *Store[K, V]) WithClock(now func() time.Time) *Store[K, V] {
	s.now = now
	return s
}

// Get returns the value for key. An expired entry is a miss and is removed.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, replacing any previous
// entry. When the store is bounded and full, the entry with the smallest
// insertion time is evicted first (insertion-order eviction, not LRU).
func (s *Store[K, V]) Set(key K, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize > 0 {
		if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
			s.evictOldestLocked()
		}
	}
	s.entries[key] = entry[V]{value: value, insertedAt: s.now(), ttl: ttl}
}

// Has reports whether key holds a live entry. Unlike Get it does not remove
// an expired entry.
func (s *Store[K, V]) Has(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return ok && !e.expired(s.now())
}

// Delete removes key and reports whether an entry existed.
func (s *Store[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Len returns the number of stored entries, expired ones included until they
// are read or swept.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes all expired entries and returns how many were removed. It
// exists purely to bound memory for keys that are never read again.
func (s *Store[K, V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[K]entry[V])
}

// evictOldestLocked removes the single entry with the smallest insertion
// time. Caller must hold the write lock.
func (s *Store[K, V]) evictOldestLocked() {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for key, e := range s.entries {
		if !found || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			found = true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
