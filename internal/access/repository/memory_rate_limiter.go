// Package repository implements the guard's rate limit and lockout stores.
package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is a per-key token bucket for single-process deployments.
// A key may spend limit requests in a burst and regains them evenly over window.
type MemoryRateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewMemoryRateLimiter allows limit requests per window for each key.
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

// Allow consumes one token for key.
func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.limiters[key]
	if !ok {
		every := rate.Every(m.window / time.Duration(max(m.limit, 1)))
		entry = &limiterEntry{limiter: rate.NewLimiter(every, m.limit)}
		m.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter.AllowN(now, 1), nil
}

// CleanupStale drops limiters idle for longer than maxIdle every interval
// until ctx is done.
func (m *MemoryRateLimiter) CleanupStale(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeIdle(maxIdle)
		}
	}
}

func (m *MemoryRateLimiter) removeIdle(maxIdle time.Duration) {
	threshold := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(m.limiters, key)
		}
	}
}
