// Package ratelimit implements a fixed-window per-user request limiter. It
// follows the same mutex-guarded TTL-map shape as the other ephemeral stores:
// a window entry is logically absent once its reset time has passed, and
// IsRateLimited self-heals on rollover, so Cleanup only bounds memory.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// Window is the fixed rate-limit window.
	Window = 60 * time.Second

	// MaxRequests is the ceiling of requests allowed per window.
	MaxRequests = 20
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per user within fixed windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[uint]*window

	now func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		windows: make(map[uint]*window),
		now:     time.Now,
	}
}

// IsRateLimited records a request for userID and reports whether it exceeds
// the ceiling for the current window. The first request of a window seeds it.
func (l *Limiter) IsRateLimited(userID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.After(w.resetAt) {
		l.windows[userID] = &window{count: 1, resetAt: now.Add(Window)}
		return false
	}

	w.count++
	return w.count > MaxRequests
}

// RemainingRequests returns how many requests userID may still make in the
// current window without being limited.
func (l *Limiter) RemainingRequests(userID uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[userID]
	if !ok || l.now().After(w.resetAt) {
		return MaxRequests
	}
	if w.count >= MaxRequests {
		return 0
	}
	return MaxRequests - w.count
}

// TimeUntilReset returns how long until userID's window rolls over; zero when
// no window is active.
func (l *Limiter) TimeUntilReset(userID uint) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[userID]
	if !ok {
		return 0
	}
	remaining := w.resetAt.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Cleanup removes windows that have already elapsed and returns how many were
// removed.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for userID, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, userID)
			removed++
		}
	}
	return removed
}
