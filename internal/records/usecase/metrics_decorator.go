package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medmarket/phiguard/internal/metrics"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.ComplianceMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.ComplianceMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	r.metrics.RecordOperation(ctx, "records", operation, status)
	r.metrics.RecordDuration(ctx, "records", operation, time.Since(start), status)
}

// Create records metrics for record creation and counts the PHI categories found.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	actorID string,
	input CreateInput,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Create(ctx, actorID, input)
	r.record(ctx, "record_create", start, err)
	if err == nil {
		for _, phiType := range record.PHITypes {
			r.metrics.RecordPHIDetection(ctx, phiType)
		}
	}
	return record, err
}

// Get records metrics for record reads.
func (r *recordUseCaseWithMetrics) Get(
	ctx context.Context,
	access recordsDomain.Access,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Get(ctx, access, recordID)
	r.record(ctx, "record_get", start, err)
	return record, err
}

// List records metrics for record listing.
func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	access recordsDomain.Access,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	start := time.Now()
	records, err := r.next.List(ctx, access, offset, limit)
	r.record(ctx, "record_list", start, err)
	return records, err
}

// Delete records metrics for record deletion.
func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, subjectID, recordID)
	r.record(ctx, "record_delete", start, err)
	return err
}

// DeleteAll records metrics for subject-wide deletion.
func (r *recordUseCaseWithMetrics) DeleteAll(ctx context.Context, subjectID string) (int64, error) {
	start := time.Now()
	n, err := r.next.DeleteAll(ctx, subjectID)
	r.record(ctx, "record_delete_all", start, err)
	return n, err
}
