// Package mocks provides mock implementations of the access guard interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

// MockAccessGuard is a mock implementation of AccessGuard.
type MockAccessGuard struct {
	mock.Mock
}

// Authorize mocks the Authorize method.
func (m *MockAccessGuard) Authorize(
	ctx context.Context,
	actor *accessDomain.Actor,
	opts accessDomain.Options,
) (*accessDomain.Decision, error) {
	args := m.Called(ctx, actor, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Decision), args.Error(1)
}

// RecordAuthFailure mocks the RecordAuthFailure method.
func (m *MockAccessGuard) RecordAuthFailure(ctx context.Context, actorID string) error {
	return m.Called(ctx, actorID).Error(0)
}

// ClearFailures mocks the ClearFailures method.
func (m *MockAccessGuard) ClearFailures(ctx context.Context, actorID string) error {
	return m.Called(ctx, actorID).Error(0)
}

// MockRateLimiter is a mock implementation of RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

// Allow mocks the Allow method.
func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockLockoutStore is a mock implementation of LockoutStore.
type MockLockoutStore struct {
	mock.Mock
}

// IsLocked mocks the IsLocked method.
func (m *MockLockoutStore) IsLocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// RecordFailure mocks the RecordFailure method.
func (m *MockLockoutStore) RecordFailure(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// Lock mocks the Lock method.
func (m *MockLockoutStore) Lock(ctx context.Context, key string, d time.Duration) error {
	return m.Called(ctx, key, d).Error(0)
}

// Clear mocks the Clear method.
func (m *MockLockoutStore) Clear(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockGrantFinder is a mock implementation of GrantFinder.
type MockGrantFinder struct {
	mock.Mock
}

// Find mocks the Find method.
func (m *MockGrantFinder) Find(ctx context.Context, grantee, resource string) (*emergencyDomain.Grant, error) {
	args := m.Called(ctx, grantee, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*emergencyDomain.Grant), args.Error(1)
}
