package realtime

import (
	"sync"
	"time"
)

// ConnLimiter is a fixed-window connection counter per source address.
type ConnLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string]windowCount
	now    func() time.Time
}

type windowCount struct {
	count int
	start time.Time
}

// NewConnLimiter allows max connections per address per window.
func NewConnLimiter(window time.Duration, max int) *ConnLimiter {
	return &ConnLimiter{
		window: window,
		max:    max,
		hits:   make(map[string]windowCount),
		now:    time.Now,
	}
}

// Allow records a connection attempt from addr and reports whether it is
// within quota. Unknown addresses are always allowed.
func (l *ConnLimiter) Allow(addr string) bool {
	if addr == "" || l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.hits[addr]
	if !ok || now.Sub(w.start) > l.window {
		l.hits[addr] = windowCount{count: 1, start: now}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	l.hits[addr] = w
	return true
}

// Prune drops windows that have already expired and returns how many were removed.
func (l *ConnLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for addr, w := range l.hits {
		if now.Sub(w.start) > l.window {
			delete(l.hits, addr)
			removed++
		}
	}
	return removed
}
