package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	consentUseCase "github.com/medmarket/phiguard/internal/consent/usecase"
	cryptoUseCase "github.com/medmarket/phiguard/internal/crypto/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// Option configures a recordUseCase.
type Option func(*recordUseCase)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(uc *recordUseCase) {
		uc.now = now
	}
}

type recordUseCase struct {
	repo    RecordRepository
	crypto  cryptoUseCase.CryptoUseCase
	scanner PHIScanner
	consent consentUseCase.ConsentVerifier
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecordUseCase creates the record use case.
func NewRecordUseCase(
	repo RecordRepository,
	crypto cryptoUseCase.CryptoUseCase,
	scanner PHIScanner,
	consent consentUseCase.ConsentVerifier,
	logger *slog.Logger,
	opts ...Option,
) RecordUseCase {
	uc := &recordUseCase{
		repo:    repo,
		crypto:  crypto,
		scanner: scanner,
		consent: consent,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create scans, encrypts and hashes the content, then stores the record.
func (r *recordUseCase) Create(
	ctx context.Context,
	actorID string,
	input CreateInput,
) (*recordsDomain.Record, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	content, err := json.Marshal(input.Data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "record data is not serializable")
	}

	payload, err := r.crypto.Encrypt(ctx, content, recordsDomain.StoragePurpose)
	if err != nil {
		return nil, err
	}

	record := &recordsDomain.Record{
		ID:          uuid.Must(uuid.NewV7()),
		SubjectID:   input.SubjectID,
		Category:    input.Category,
		Payload:     *payload,
		ContentHash: r.crypto.Hash(content),
		PHITypes:    r.scanner.Scan(string(content)).Types,
		CreatedBy:   actorID,
		CreatedAt:   r.now().UTC(),
	}
	if record.PHITypes == nil {
		record.PHITypes = []string{}
	}

	if err := r.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get authorizes the read, decrypts the payload and checks it against the content hash.
func (r *recordUseCase) Get(
	ctx context.Context,
	access recordsDomain.Access,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	if err := r.authorize(ctx, access); err != nil {
		return nil, err
	}

	record, err := r.repo.Get(ctx, access.SubjectID, recordID)
	if err != nil {
		return nil, err
	}

	content, err := r.crypto.DecryptBytes(ctx, &record.Payload)
	if err != nil {
		return nil, err
	}
	if r.crypto.Hash(content) != record.ContentHash {
		r.logger.Error("record content hash mismatch",
			slog.String("record_id", record.ID.String()),
			slog.String("subject_id", record.SubjectID))
		return nil, recordsDomain.ErrIntegrity
	}

	if err := json.Unmarshal(content, &record.Data); err != nil {
		return nil, apperrors.Wrap(recordsDomain.ErrIntegrity, "record content is not valid JSON")
	}
	return record, nil
}

// List authorizes the read and returns metadata only.
func (r *recordUseCase) List(
	ctx context.Context,
	access recordsDomain.Access,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	if err := r.authorize(ctx, access); err != nil {
		return nil, err
	}
	return r.repo.List(ctx, access.SubjectID, offset, limit)
}

// Delete removes a single record.
func (r *recordUseCase) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	return r.repo.Delete(ctx, subjectID, recordID)
}

// DeleteAll removes every record of subjectID.
func (r *recordUseCase) DeleteAll(ctx context.Context, subjectID string) (int64, error) {
	if subjectID == "" {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "subject id is required")
	}
	return r.repo.DeleteBySubject(ctx, subjectID)
}

// authorize lets the subject read its own records, accepts an emergency grant
// validated upstream, and otherwise requires consent for the declared purpose.
func (r *recordUseCase) authorize(ctx context.Context, access recordsDomain.Access) error {
	if access.ActorID == "" {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "actor is required")
	}

	switch access.Basis() {
	case "subject", "emergency":
		return nil
	case "":
		return recordsDomain.ErrPurposeRequired
	}

	if !r.consent.VerifyConsent(ctx, access.ActorID, access.SubjectID, access.Purpose) {
		return apperrors.Wrapf(apperrors.ErrConsentRequired, "no consent for purpose %q", access.Purpose)
	}
	return nil
}

func validateCreate(input CreateInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.SubjectID, validation.Required, customValidation.Identifier),
		validation.Field(&input.Category, validation.Required, customValidation.Identifier),
		validation.Field(&input.Data, validation.NotNil),
	)
	return customValidation.WrapValidationError(err)
}
