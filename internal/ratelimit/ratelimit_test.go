package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() (*Limiter, *time.Time) {
	l := New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCeiling(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < MaxRequests; i++ {
		require.False(t, l.IsRateLimited(7), "request %d must pass", i+1)
	}
	assert.True(t, l.IsRateLimited(7), "request %d must be limited", MaxRequests+1)
	assert.True(t, l.IsRateLimited(7), "limit holds for the rest of the window")
}

func TestWindowReset(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i <= MaxRequests; i++ {
		l.IsRateLimited(7)
	}
	require.True(t, l.IsRateLimited(7))

	*now = now.Add(Window + time.Second)
	assert.False(t, l.IsRateLimited(7), "a new window starts clean")
	assert.Equal(t, MaxRequests-1, l.RemainingRequests(7))
}

func TestUsersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i <= MaxRequests; i++ {
		l.IsRateLimited(1)
	}
	require.True(t, l.IsRateLimited(1))
	assert.False(t, l.IsRateLimited(2))
}

func TestRemainingRequests(t *testing.T) {
	l, _ := newTestLimiter()

	assert.Equal(t, MaxRequests, l.RemainingRequests(7), "untouched user has the full budget")

	l.IsRateLimited(7)
	l.IsRateLimited(7)
	assert.Equal(t, MaxRequests-2, l.RemainingRequests(7))

	for i := 0; i < MaxRequests; i++ {
		l.IsRateLimited(7)
	}
	assert.Equal(t, 0, l.RemainingRequests(7), "remaining never goes negative")
}

func TestTimeUntilReset(t *testing.T) {
	l, now := newTestLimiter()

	assert.Zero(t, l.TimeUntilReset(7))

	l.IsRateLimited(7)
	assert.Equal(t, Window, l.TimeUntilReset(7))

	*now = now.Add(45 * time.Second)
	assert.Equal(t, 15*time.Second, l.TimeUntilReset(7))

	*now = now.Add(time.Minute)
	assert.Zero(t, l.TimeUntilReset(7))
}

func TestCleanup(t *testing.T) {
	l, now := newTestLimiter()

	l.IsRateLimited(1)
	l.IsRateLimited(2)
	*now = now.Add(Window + time.Second)
	l.IsRateLimited(3)

	removed := l.Cleanup()
	assert.Equal(t, 2, removed)
	assert.Equal(t, MaxRequests-1, l.RemainingRequests(3), "live window survives cleanup")
}
