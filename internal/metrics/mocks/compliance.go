// Package mocks provides a testify mock of ComplianceMetrics.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockComplianceMetrics is a mock implementation of metrics.ComplianceMetrics.
type MockComplianceMetrics struct {
	mock.Mock
}

// RecordOperation mocks the RecordOperation method.
func (m *MockComplianceMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

// RecordDuration mocks the RecordDuration method.
func (m *MockComplianceMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// RecordAccessDecision mocks the RecordAccessDecision method.
func (m *MockComplianceMetrics) RecordAccessDecision(ctx context.Context, reasonCode string) {
	m.Called(ctx, reasonCode)
}

// RecordAuditFailure mocks the RecordAuditFailure method.
func (m *MockComplianceMetrics) RecordAuditFailure(ctx context.Context, sink string) {
	m.Called(ctx, sink)
}

// RecordPHIDetection mocks the RecordPHIDetection method.
func (m *MockComplianceMetrics) RecordPHIDetection(ctx context.Context, phiType string) {
	m.Called(ctx, phiType)
}
