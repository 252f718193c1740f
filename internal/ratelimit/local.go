package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Local is a per-process token bucket keyed by caller. Idle keys are
// dropped by Sweep.
type Local struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func NewLocal(capacity int, refillPerSecond float64) *Local {
	if capacity <= 0 {
		capacity = 1
	}
	return &Local{
		entries: make(map[string]*localEntry),
		limit:   rate.Limit(refillPerSecond),
		burst:   capacity,
		now:     time.Now,
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.lim.AllowN(now, 1), nil
}

// IdleAfter is how long a key must go unused before its bucket is full
// again, so dropping it loses no state. Zero refill never refills; an
// hour is used then.
func (l *Local) IdleAfter() time.Duration {
	if l.limit <= 0 {
		return time.Hour
	}
	d := time.Duration(float64(l.burst) / float64(l.limit) * float64(time.Second))
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

// Sweep drops keys unused for at least idle and returns how many went.
func (l *Local) Sweep(idle time.Duration) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) >= idle {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RunSweeper calls Sweep with IdleAfter every interval until ctx is done.
func (l *Local) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(n int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	idle := l.IdleAfter()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(idle); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
