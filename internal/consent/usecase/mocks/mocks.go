// Package mocks provides mock implementations of the consent interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	consentUseCase "github.com/medmarket/phiguard/internal/consent/usecase"
)

// MockConsentRepository is a mock implementation of ConsentRepository.
type MockConsentRepository struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockConsentRepository) Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error) {
	args := m.Called(ctx, subjectID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consentDomain.Record), args.Error(1)
}

// Upsert mocks the Upsert method.
func (m *MockConsentRepository) Upsert(ctx context.Context, record *consentDomain.Record) error {
	return m.Called(ctx, record).Error(0)
}

// AppendEvent mocks the AppendEvent method.
func (m *MockConsentRepository) AppendEvent(
	ctx context.Context,
	subjectID, purpose string,
	event consentDomain.Event,
) error {
	return m.Called(ctx, subjectID, purpose, event).Error(0)
}

// MockConsentUseCase is a mock implementation of ConsentUseCase.
type MockConsentUseCase struct {
	mock.Mock
}

// VerifyConsent mocks the VerifyConsent method.
func (m *MockConsentUseCase) VerifyConsent(ctx context.Context, requester, subjectID, purpose string) bool {
	return m.Called(ctx, requester, subjectID, purpose).Bool(0)
}

// Grant mocks the Grant method.
func (m *MockConsentUseCase) Grant(
	ctx context.Context,
	actorID string,
	input consentUseCase.GrantInput,
) (*consentDomain.Record, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consentDomain.Record), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockConsentUseCase) Revoke(
	ctx context.Context,
	actorID, subjectID, purpose string,
) (*consentDomain.Record, error) {
	args := m.Called(ctx, actorID, subjectID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consentDomain.Record), args.Error(1)
}

// Get mocks the Get method.
func (m *MockConsentUseCase) Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error) {
	args := m.Called(ctx, subjectID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consentDomain.Record), args.Error(1)
}
