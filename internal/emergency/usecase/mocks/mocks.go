// Package mocks provides mock implementations of the emergency access interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

// MockGrantStore is a mock implementation of GrantStore.
type MockGrantStore struct {
	mock.Mock
}

// Save mocks the Save method.
func (m *MockGrantStore) Save(ctx context.Context, grant *emergencyDomain.Grant) error {
	return m.Called(ctx, grant).Error(0)
}

// Find mocks the Find method.
func (m *MockGrantStore) Find(ctx context.Context, grantee, resource string) (*emergencyDomain.Grant, error) {
	args := m.Called(ctx, grantee, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*emergencyDomain.Grant), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

// NotifyEmergencyAccess mocks the NotifyEmergencyAccess method.
func (m *MockNotifier) NotifyEmergencyAccess(ctx context.Context, grant *emergencyDomain.Grant) error {
	return m.Called(ctx, grant).Error(0)
}

// MockEmergencyAccessHandler is a mock implementation of EmergencyAccessHandler.
type MockEmergencyAccessHandler struct {
	mock.Mock
}

// GrantEmergencyAccess mocks the GrantEmergencyAccess method.
func (m *MockEmergencyAccessHandler) GrantEmergencyAccess(
	ctx context.Context,
	actor *accessDomain.Actor,
	resource, reason, approvedBy string,
) (*emergencyDomain.Grant, error) {
	args := m.Called(ctx, actor, resource, reason, approvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*emergencyDomain.Grant), args.Error(1)
}
