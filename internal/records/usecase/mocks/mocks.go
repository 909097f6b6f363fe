// Package mocks provides mock implementations of the record interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
	recordsUseCase "github.com/medmarket/phiguard/internal/records/usecase"
)

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	return m.Called(ctx, record).Error(0)
}

// Get mocks the Get method.
func (m *MockRecordRepository) Get(
	ctx context.Context,
	subjectID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, subjectID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// List mocks the List method.
func (m *MockRecordRepository) List(
	ctx context.Context,
	subjectID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, subjectID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockRecordRepository) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	return m.Called(ctx, subjectID, recordID).Error(0)
}

// DeleteBySubject mocks the DeleteBySubject method.
func (m *MockRecordRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPHIScanner is a mock implementation of PHIScanner.
type MockPHIScanner struct {
	mock.Mock
}

// Scan mocks the Scan method.
func (m *MockPHIScanner) Scan(text string) phiDomain.ScanResult {
	return m.Called(text).Get(0).(phiDomain.ScanResult)
}

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRecordUseCase) Create(
	ctx context.Context,
	actorID string,
	input recordsUseCase.CreateInput,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRecordUseCase) Get(
	ctx context.Context,
	access recordsDomain.Access,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, access, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// List mocks the List method.
func (m *MockRecordUseCase) List(
	ctx context.Context,
	access recordsDomain.Access,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, access, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockRecordUseCase) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	return m.Called(ctx, subjectID, recordID).Error(0)
}

// DeleteAll mocks the DeleteAll method.
func (m *MockRecordUseCase) DeleteAll(ctx context.Context, subjectID string) (int64, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(int64), args.Error(1)
}
