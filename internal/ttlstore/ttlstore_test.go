package ttlstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(maxSize int) (*Store[string, string], *fakeClock) {
	s := NewBounded[string, string](maxSize)
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now
	return s, clock
}

func TestSetGet(t *testing.T) {
	s, _ := newTestStore(0)

	s.Set("a", "one", time.Minute)
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "one", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestLazyExpiry(t *testing.T) {
	s, clock := newTestStore(0)

	s.Set("a", "one", time.Minute)
	clock.advance(time.Minute + time.Second)

	_, ok := s.Get("a")
	assert.False(t, ok, "expired entry must be a miss")
	assert.Equal(t, 0, s.Len(), "expired entry must be removed on read")
}

func TestHasDoesNotRemove(t *testing.T) {
	s, clock := newTestStore(0)

	s.Set("a", "one", time.Minute)
	assert.True(t, s.Has("a"))

	clock.advance(2 * time.Minute)
	assert.False(t, s.Has("a"))
	assert.Equal(t, 1, s.Len(), "Has must not mutate the store")
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(0)

	s.Set("a", "one", time.Minute)
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"), "second delete reports nothing removed")
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(0)

	s.Set("short", "x", time.Second)
	s.Set("long", "y", time.Hour)
	clock.advance(time.Minute)

	removed := s.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("long")
	assert.True(t, ok, "sweep must never evict a live entry")
}

func TestInsertionOrderEviction(t *testing.T) {
	s, clock := newTestStore(3)

	for i := 0; i < 3; i++ {
		s.Set(fmt.Sprintf("k%d", i), "v", time.Hour)
		clock.advance(time.Second)
	}

	// Touch k0 via Get; eviction is by insertion time, not access time.
	_, ok := s.Get("k0")
	require.True(t, ok)

	s.Set("k3", "v", time.Hour)
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Has("k0"), "oldest-inserted entry is evicted first")
	assert.True(t, s.Has("k1"))
	assert.True(t, s.Has("k3"))
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	s, clock := newTestStore(2)

	s.Set("a", "one", time.Hour)
	clock.advance(time.Second)
	s.Set("b", "two", time.Hour)
	clock.advance(time.Second)

	s.Set("a", "updated", time.Hour)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("b"), "replacing an existing key must not evict")

	v, _ := s.Get("a")
	assert.Equal(t, "updated", v)
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(0)

	s.Set("a", "one", time.Minute)
	s.Set("b", "two", time.Minute)
	s.Clear()
	assert.Equal(t, 0, s.Len())
}
