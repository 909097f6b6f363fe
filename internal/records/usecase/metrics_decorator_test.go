package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	metricsMocks "github.com/medmarket/phiguard/internal/metrics/mocks"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
	"github.com/medmarket/phiguard/internal/records/usecase"
	"github.com/medmarket/phiguard/internal/records/usecase/mocks"
)

func TestRecordUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Create counts detected PHI", func(t *testing.T) {
		next := &mocks.MockRecordUseCase{}
		m := &metricsMocks.MockComplianceMetrics{}
		uc := usecase.NewRecordUseCaseWithMetrics(next, m)

		input := usecase.CreateInput{SubjectID: "patient-1", Category: "note", Data: "x"}
		record := &recordsDomain.Record{PHITypes: []string{"name", "ssn"}}
		next.On("Create", ctx, "dr-1", input).Return(record, nil).Once()
		m.On("RecordOperation", ctx, "records", "record_create", "success").Return().Once()
		m.On("RecordDuration", ctx, "records", "record_create", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
		m.On("RecordPHIDetection", ctx, "name").Return().Once()
		m.On("RecordPHIDetection", ctx, "ssn").Return().Once()

		res, err := uc.Create(ctx, "dr-1", input)
		assert.NoError(t, err)
		assert.Equal(t, record, res)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Get error", func(t *testing.T) {
		next := &mocks.MockRecordUseCase{}
		m := &metricsMocks.MockComplianceMetrics{}
		uc := usecase.NewRecordUseCaseWithMetrics(next, m)

		access := recordsDomain.Access{ActorID: "dr-1", SubjectID: "patient-1"}
		id := uuid.Must(uuid.NewV7())
		next.On("Get", ctx, access, id).Return(nil, errors.New("boom")).Once()
		m.On("RecordOperation", ctx, "records", "record_get", "error").Return().Once()
		m.On("RecordDuration", ctx, "records", "record_get", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		_, err := uc.Get(ctx, access, id)
		assert.Error(t, err)
		m.AssertExpectations(t)
	})

	t.Run("DeleteAll success", func(t *testing.T) {
		next := &mocks.MockRecordUseCase{}
		m := &metricsMocks.MockComplianceMetrics{}
		uc := usecase.NewRecordUseCaseWithMetrics(next, m)

		next.On("DeleteAll", ctx, "patient-1").Return(int64(2), nil).Once()
		m.On("RecordOperation", ctx, "records", "record_delete_all", "success").Return().Once()
		m.On("RecordDuration", ctx, "records", "record_delete_all", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		n, err := uc.DeleteAll(ctx, "patient-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)
		m.AssertExpectations(t)
	})
}
