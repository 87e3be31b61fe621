// Package ratelimit bounds retrieval requests per learner per minute.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const Window = time.Minute

// DefaultQuota is the per-learner request allowance per window.
const DefaultQuota = 30

// Limiter answers whether a learner may make another request. When denied,
// the returned duration is the retry-after hint. Denial is non-fatal; no
// request state is lost.
type Limiter interface {
	Allow(ctx context.Context, learnerID string) (bool, time.Duration, error)
}

// MemoryLimiter is the process-local sliding window. It is only correct for a
// single instance; multi-instance deployments use RedisLimiter so the window
// is shared.
type MemoryLimiter struct {
	mu        sync.Mutex
	quota     int
	window    time.Duration
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(quota int) *MemoryLimiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &MemoryLimiter{
		quota:  quota,
		window: Window,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, learnerID string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff, learnerID)

	kept := l.hits[learnerID][:0]
	for _, t := range l.hits[learnerID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.quota {
		l.hits[learnerID] = kept
		retryAfter := kept[0].Add(l.window).Sub(now)
		return false, retryAfter, nil
	}

	l.hits[learnerID] = append(kept, now)
	return true, 0, nil
}

// sweep drops learners whose entire window has expired, at most once per
// window, so the map stays bounded by recently active learners. Hits are
// appended in time order; the last entry is the newest.
func (l *MemoryLimiter) sweep(now, cutoff time.Time, current string) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for id, times := range l.hits {
		if id == current {
			continue
		}
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.hits, id)
		}
	}
	l.lastSweep = now
}
