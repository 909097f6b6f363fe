// Package mocks provides mock implementations of the audit interfaces for testing.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// MockSink is a mock implementation of Sink.
type MockSink struct {
	mock.Mock
}

// Name mocks the Name method.
func (m *MockSink) Name() string {
	return m.Called().String(0)
}

// Write mocks the Write method.
func (m *MockSink) Write(ctx context.Context, entry *auditDomain.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

// MockReader is a mock implementation of Reader.
type MockReader struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockReader) List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

// ListBetween mocks the ListBetween method.
func (m *MockReader) ListBetween(ctx context.Context, from, to time.Time) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

// ListByRequestID mocks the ListByRequestID method.
func (m *MockReader) ListByRequestID(ctx context.Context, requestID string) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

// MockFallbackStore is a mock implementation of FallbackStore.
type MockFallbackStore struct {
	mock.Mock
}

// Write mocks the Write method.
func (m *MockFallbackStore) Write(ctx context.Context, entry *auditDomain.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

// ListPending mocks the ListPending method.
func (m *MockFallbackStore) ListPending(ctx context.Context, limit int) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

// MarkReconciled mocks the MarkReconciled method.
func (m *MockFallbackStore) MarkReconciled(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

// MockArchiveStore is a mock implementation of ArchiveStore.
type MockArchiveStore struct {
	mock.Mock
}

// Put mocks the Put method.
func (m *MockArchiveStore) Put(ctx context.Context, key string, body io.Reader) error {
	return m.Called(ctx, key, body).Error(0)
}

// MockAuditLogger is a mock implementation of AuditLogger.
type MockAuditLogger struct {
	mock.Mock
}

// Log mocks the Log method.
func (m *MockAuditLogger) Log(ctx context.Context, entry *auditDomain.Entry) {
	m.Called(ctx, entry)
}

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	from, to time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

// Correct mocks the Correct method.
func (m *MockAuditLogUseCase) Correct(
	ctx context.Context,
	correctsRequestID string,
	actor auditDomain.Actor,
	reason string,
) error {
	return m.Called(ctx, correctsRequestID, actor, reason).Error(0)
}

// Reconcile mocks the Reconcile method.
func (m *MockAuditLogUseCase) Reconcile(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

// Archive mocks the Archive method.
func (m *MockAuditLogUseCase) Archive(ctx context.Context, from, to time.Time, key string) (int, error) {
	args := m.Called(ctx, from, to, key)
	return args.Int(0), args.Error(1)
}
