package usecase

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// Option configures the consent use case.
type Option func(*consentUseCase)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(uc *consentUseCase) {
		uc.now = now
	}
}

type consentUseCase struct {
	txManager   database.TxManager
	repo        ConsentRepository
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
	now         func() time.Time
}

// NewConsentUseCase creates a ConsentUseCase.
func NewConsentUseCase(
	txManager database.TxManager,
	repo ConsentRepository,
	auditLogger auditUseCase.AuditLogger,
	logger *slog.Logger,
	opts ...Option,
) ConsentUseCase {
	uc := &consentUseCase{
		txManager:   txManager,
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// VerifyConsent checks the record for (subjectID, purpose) and audits the result.
func (uc *consentUseCase) VerifyConsent(ctx context.Context, requester, subjectID, purpose string) bool {
	now := uc.now().UTC()

	record, err := uc.repo.Get(ctx, subjectID, purpose)
	var reason string
	switch {
	case err == nil:
		reason = record.Check(requester, now)
	case apperrors.Is(err, consentDomain.ErrConsentNotFound):
		reason = consentDomain.ReasonNotFound
	default:
		uc.logger.Error("consent lookup failed",
			slog.String("subject_id", subjectID),
			slog.String("purpose", purpose),
			slog.Any("error", err),
		)
		reason = consentDomain.ReasonStoreError
	}

	granted := reason == consentDomain.ReasonGranted
	entry := &auditDomain.Entry{
		Level:    auditDomain.LevelInfo,
		Actor:    auditDomain.Actor{ID: requester},
		Action:   auditDomain.ActionConsentCheck,
		Resource: "subjects/" + subjectID,
		Outcome:  auditDomain.OutcomeSuccess,
		Details: map[string]any{
			"subjectId": subjectID,
			"purpose":   purpose,
			"requester": requester,
			"granted":   granted,
			"reason":    reason,
		},
	}
	switch {
	case reason == consentDomain.ReasonStoreError:
		entry.Level = auditDomain.LevelError
		entry.Outcome = auditDomain.OutcomeFailure
	case !granted:
		entry.Level = auditDomain.LevelWarning
		entry.Outcome = auditDomain.OutcomeDenied
	}
	uc.auditLogger.Log(ctx, entry)

	return granted
}

func (uc *consentUseCase) Grant(
	ctx context.Context,
	actorID string,
	input GrantInput,
) (*consentDomain.Record, error) {
	now := uc.now().UTC()
	if err := validateGrant(input, now); err != nil {
		return nil, err
	}

	record := &consentDomain.Record{
		SubjectID: input.SubjectID,
		Grantee:   input.Grantee,
		Purpose:   input.Purpose,
		Granted:   true,
		IssuedAt:  &now,
		ExpiresAt: input.ExpiresAt,
	}
	event := consentDomain.Event{
		Action:     consentDomain.EventGranted,
		ActorID:    actorID,
		Grantee:    input.Grantee,
		ExpiresAt:  input.ExpiresAt,
		OccurredAt: now,
	}

	var stored *consentDomain.Record
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Upsert(ctx, record); err != nil {
			return err
		}
		if err := uc.repo.AppendEvent(ctx, record.SubjectID, record.Purpose, event); err != nil {
			return err
		}
		var err error
		stored, err = uc.repo.Get(ctx, record.SubjectID, record.Purpose)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to grant consent")
	}
	return stored, nil
}

func (uc *consentUseCase) Revoke(
	ctx context.Context,
	actorID, subjectID, purpose string,
) (*consentDomain.Record, error) {
	now := uc.now().UTC()

	var stored *consentDomain.Record
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		record, err := uc.repo.Get(ctx, subjectID, purpose)
		if err != nil {
			return err
		}

		record.Granted = false
		if err := uc.repo.Upsert(ctx, record); err != nil {
			return err
		}
		if err := uc.repo.AppendEvent(ctx, subjectID, purpose, consentDomain.Event{
			Action:     consentDomain.EventRevoked,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		stored, err = uc.repo.Get(ctx, subjectID, purpose)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to revoke consent")
	}
	return stored, nil
}

func (uc *consentUseCase) Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error) {
	return uc.repo.Get(ctx, subjectID, purpose)
}

func validateGrant(input GrantInput, now time.Time) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.SubjectID, validation.Required, customValidation.Identifier, validation.Length(1, 255)),
		validation.Field(&input.Purpose, validation.Required, customValidation.Purpose, validation.Length(1, 100)),
		validation.Field(&input.Grantee, validation.Required, validation.When(
			input.Grantee != consentDomain.AnyGrantee,
			customValidation.Identifier,
		), validation.Length(1, 255)),
	)
	if err != nil {
		return customValidation.WrapValidationError(err)
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "expires_at must be in the future")
	}
	return nil
}
