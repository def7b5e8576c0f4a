package web

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter per client key. Stale keys are
// pruned on access once the map grows past pruneAt.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	pruneAt  int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		pruneAt:  1024,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (rl *rateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	if len(rl.requests) >= rl.pruneAt {
		rl.pruneLocked(windowStart)
	}

	valid := recent(rl.requests[key], windowStart)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

func (rl *rateLimiter) pruneLocked(windowStart time.Time) {
	for key, times := range rl.requests {
		if valid := recent(times, windowStart); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func recent(times []time.Time, windowStart time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(windowStart) {
		i++
	}
	return times[i:]
}
