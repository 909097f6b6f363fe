package repository

import (
	"context"
	"sync"
	"time"
)

type lockoutState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// MemoryLockoutStore counts failures per key in a fixed window.
type MemoryLockoutStore struct {
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	states map[string]*lockoutState
}

// NewMemoryLockoutStore counts failures within window.
func NewMemoryLockoutStore(window time.Duration) *MemoryLockoutStore {
	return &MemoryLockoutStore{
		window: window,
		now:    time.Now,
		states: make(map[string]*lockoutState),
	}
}

// IsLocked reports whether key is locked at the current time.
func (m *MemoryLockoutStore) IsLocked(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[key]
	return ok && m.now().Before(state.lockedUntil), nil
}

// RecordFailure counts a failure, starting a new window when the previous one elapsed.
func (m *MemoryLockoutStore) RecordFailure(_ context.Context, key string) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[key]
	if !ok {
		state = &lockoutState{}
		m.states[key] = state
	}
	if state.windowStart.IsZero() || now.Sub(state.windowStart) >= m.window {
		state.failures = 0
		state.windowStart = now
	}
	state.failures++
	return state.failures, nil
}

// Lock locks key for d and resets its failures.
func (m *MemoryLockoutStore) Lock(_ context.Context, key string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[key] = &lockoutState{lockedUntil: m.now().Add(d)}
	return nil
}

// Clear forgets key.
func (m *MemoryLockoutStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, key)
	return nil
}
