// Package ratelimit bounds generation requests with in-process sliding windows.
package ratelimit

import (
	"sync"
	"time"
)

// Default limits.
const (
	DefaultPerMinute = 5
	DefaultPerDay    = 100
)

// Window names reported in decisions.
const (
	WindowMinute = "minute"
	WindowDay    = "day"
)

// Clock returns the current time.
type Clock func() time.Time

// Config sets the per-window limits. A limit of zero or less disables the window.
type Config struct {
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE" yaml:"per_minute"`
	PerDay    int `env:"RATE_LIMIT_PER_DAY"    yaml:"per_day"`
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// ResetIn is how long until the full window admits a request. Zero when allowed.
	ResetIn time.Duration
	// Window names the window that rejected the request.
	Window string
	// Remaining is the smallest headroom left across windows after this call.
	Remaining int
}

type window struct {
	name  string
	size  time.Duration
	limit int
	// hits is ordered oldest first.
	hits []time.Time
}

func (w *window) prune(now time.Time) {
	cut := 0
	for cut < len(w.hits) && now.Sub(w.hits[cut]) >= w.size {
		cut++
	}
	if cut > 0 {
		w.hits = append(w.hits[:0], w.hits[cut:]...)
	}
}

// Limiter is a set of sliding windows sharing one lock. The zero value is not usable.
type Limiter struct {
	mu      sync.Mutex
	now     Clock
	windows []*window
}

// New creates a Limiter. A nil clock uses time.Now.
func New(cfg Config, clock Clock) *Limiter {
	if clock == nil {
		clock = time.Now
	}

	l := &Limiter{now: clock}
	if cfg.PerMinute > 0 {
		l.windows = append(l.windows, &window{name: WindowMinute, size: time.Minute, limit: cfg.PerMinute})
	}
	if cfg.PerDay > 0 {
		l.windows = append(l.windows, &window{name: WindowDay, size: 24 * time.Hour, limit: cfg.PerDay})
	}
	return l
}

// Allow prunes expired hits, checks every window and records the request
// only when all windows admit it.
func (l *Limiter) Allow() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, w := range l.windows {
		w.prune(now)
	}

	for _, w := range l.windows {
		if len(w.hits) >= w.limit {
			return Decision{
				Allowed: false,
				ResetIn: w.hits[0].Add(w.size).Sub(now),
				Window:  w.name,
			}
		}
	}

	remaining := -1
	for _, w := range l.windows {
		w.hits = append(w.hits, now)
		if left := w.limit - len(w.hits); remaining < 0 || left < remaining {
			remaining = left
		}
	}
	if remaining < 0 {
		remaining = 0
	}

	return Decision{Allowed: true, Remaining: remaining}
}

// Reset forgets every recorded request.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, w := range l.windows {
		w.hits = nil
	}
}
