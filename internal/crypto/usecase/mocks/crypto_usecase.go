// Package mocks provides mock implementations of the crypto use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

// MockCryptoUseCase is a mock implementation of CryptoUseCase.
type MockCryptoUseCase struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method.
func (m *MockCryptoUseCase) Encrypt(
	ctx context.Context,
	plaintext any,
	purpose string,
) (*cryptoDomain.EncryptedPayload, error) {
	args := m.Called(ctx, plaintext, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptedPayload), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockCryptoUseCase) Decrypt(ctx context.Context, payload *cryptoDomain.EncryptedPayload) (any, error) {
	args := m.Called(ctx, payload)
	return args.Get(0), args.Error(1)
}

// DecryptBytes mocks the DecryptBytes method.
func (m *MockCryptoUseCase) DecryptBytes(
	ctx context.Context,
	payload *cryptoDomain.EncryptedPayload,
) ([]byte, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Hash mocks the Hash method.
func (m *MockCryptoUseCase) Hash(data []byte) string {
	return m.Called(data).String(0)
}
