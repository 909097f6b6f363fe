package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

type auditLogUseCase struct {
	logger   *Logger
	reader   Reader
	sink     Sink
	signer   EntrySigner
	fallback FallbackStore
	archive  ArchiveStore
}

// NewAuditLogUseCase creates the audit read and maintenance use case. fallback
// and archive may be nil, in which case Reconcile is a no-op and Archive fails.
func NewAuditLogUseCase(
	logger *Logger,
	reader Reader,
	sink Sink,
	signer EntrySigner,
	fallback FallbackStore,
	archive ArchiveStore,
) AuditLogUseCase {
	return &auditLogUseCase{
		logger:   logger,
		reader:   reader,
		sink:     sink,
		signer:   signer,
		fallback: fallback,
		archive:  archive,
	}
}

func (a *auditLogUseCase) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
) ([]*auditDomain.Entry, error) {
	entries, err := a.reader.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return entries, nil
}

func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	from, to time.Time,
) (*auditDomain.VerificationReport, error) {
	entries, err := a.reader.ListBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}

	report := &auditDomain.VerificationReport{InvalidIDs: []uuid.UUID{}}
	for _, entry := range entries {
		report.Total++
		switch {
		case len(entry.Signature) == 0:
			report.Unsigned++
		case a.signer.Verify(entry) != nil:
			report.Invalid++
			report.InvalidIDs = append(report.InvalidIDs, entry.ID)
		default:
			report.Valid++
		}
	}
	return report, nil
}

func (a *auditLogUseCase) Correct(
	ctx context.Context,
	correctsRequestID string,
	actor auditDomain.Actor,
	reason string,
) error {
	if strings.TrimSpace(correctsRequestID) == "" || strings.TrimSpace(reason) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "request id and reason are required")
	}

	originals, err := a.reader.ListByRequestID(ctx, correctsRequestID)
	if err != nil {
		return apperrors.Wrap(err, "failed to find original audit entry")
	}
	if len(originals) == 0 {
		return auditDomain.ErrOriginalEntryNotFound
	}

	return a.logger.Record(ctx, &auditDomain.Entry{
		Level:             auditDomain.LevelWarning,
		Actor:             actor,
		Action:            auditDomain.ActionAuditCorrection,
		Resource:          originals[0].Resource,
		Outcome:           auditDomain.OutcomeSuccess,
		Details:           map[string]any{"reason": reason},
		CorrectsRequestID: correctsRequestID,
	})
}

func (a *auditLogUseCase) Reconcile(ctx context.Context, batchSize int) (int, error) {
	if a.fallback == nil {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	replayed := 0
	for {
		pending, err := a.fallback.ListPending(ctx, batchSize)
		if err != nil {
			return replayed, apperrors.Wrap(err, "failed to list pending audit entries")
		}
		if len(pending) == 0 {
			return replayed, nil
		}

		ids := make([]string, 0, len(pending))
		var writeErr error
		for _, entry := range pending {
			// Entries keep their original ID and signature, so a replay is idempotent.
			if writeErr = a.sink.Write(ctx, entry); writeErr != nil {
				break
			}
			ids = append(ids, entry.ID.String())
		}

		if len(ids) > 0 {
			if err := a.fallback.MarkReconciled(ctx, ids); err != nil {
				return replayed, apperrors.Wrap(err, "failed to mark audit entries reconciled")
			}
			replayed += len(ids)
		}
		if writeErr != nil {
			return replayed, apperrors.Wrap(writeErr, "failed to replay audit entry")
		}
		if len(pending) < batchSize {
			return replayed, nil
		}
	}
}

func (a *auditLogUseCase) Archive(ctx context.Context, from, to time.Time, key string) (int, error) {
	if a.archive == nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "audit archive store is not configured")
	}

	entries, err := a.reader.ListBetween(ctx, from, to)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to list audit logs")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return 0, apperrors.Wrap(err, "failed to encode audit entry")
		}
	}

	if err := a.archive.Put(ctx, key, &buf); err != nil {
		return 0, apperrors.Wrap(err, "failed to upload audit archive")
	}
	return len(entries), nil
}
