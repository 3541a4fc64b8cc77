package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// memoryLimiter is a fixed-window counter for single-instance deployments.
// Capacity requests are allowed per RefillInterval*Capacity/RefillTokens window.
type memoryLimiter struct {
	mu      sync.Mutex
	limit   int
	span    time.Duration
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(s Settings) Limiter {
	span := s.RefillInterval * time.Duration(s.Capacity)
	if s.RefillTokens > 1 {
		span /= time.Duration(s.RefillTokens)
	}
	if span <= 0 {
		span = time.Minute
	}
	return &memoryLimiter{
		limit:   s.Capacity,
		span:    span,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if key == "" {
		key = "anonymous"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.cleanup(now)
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.span)}
		return Decision{Allowed: true, Remaining: l.limit - 1}, nil
	}
	if w.count >= l.limit {
		return Decision{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}
	w.count++
	return Decision{Allowed: true, Remaining: l.limit - w.count}, nil
}

// cleanup drops expired windows; callers hold l.mu.
func (l *memoryLimiter) cleanup(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
}
