package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterQuota(t *testing.T) {
	limiter := NewMemoryLimiter(3)
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "learner-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d within quota was denied", i+1)
		}
	}

	allowed, retryAfter, _ := limiter.Allow(ctx, "learner-1")
	if allowed {
		t.Fatal("request over quota was allowed")
	}
	if retryAfter <= 0 || retryAfter > Window {
		t.Errorf("retry-after hint out of range: %v", retryAfter)
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(2)
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	limiter.Allow(ctx, "learner-1")
	limiter.Allow(ctx, "learner-1")

	if allowed, _, _ := limiter.Allow(ctx, "learner-1"); allowed {
		t.Fatal("expected denial at quota")
	}

	// Advance past the window; earlier hits expire.
	current = current.Add(Window + time.Second)
	if allowed, _, _ := limiter.Allow(ctx, "learner-1"); !allowed {
		t.Fatal("expected allowance after window slid")
	}
}

func TestMemoryLimiterEvictsIdleLearners(t *testing.T) {
	limiter := NewMemoryLimiter(5)
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	limiter.Allow(ctx, "learner-1")
	limiter.Allow(ctx, "learner-2")

	// Both learners go idle past the window; a request from anyone else
	// sweeps their entries.
	current = current.Add(Window + time.Second)
	limiter.Allow(ctx, "learner-3")

	if _, ok := limiter.hits["learner-1"]; ok {
		t.Error("idle learner-1 not evicted")
	}
	if _, ok := limiter.hits["learner-2"]; ok {
		t.Error("idle learner-2 not evicted")
	}
	if len(limiter.hits) != 1 {
		t.Errorf("expected only the active learner tracked, got %d entries", len(limiter.hits))
	}
}

func TestMemoryLimiterIsolatesLearners(t *testing.T) {
	limiter := NewMemoryLimiter(1)
	ctx := context.Background()

	limiter.Allow(ctx, "learner-1")
	if allowed, _, _ := limiter.Allow(ctx, "learner-2"); !allowed {
		t.Error("one learner's quota must not affect another")
	}
}
