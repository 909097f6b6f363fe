// Package usecase implements encrypted PHI record storage: records are scanned
// for PHI, encrypted and hashed before persistence, and decrypted only for the
// subject, a consented purpose or a validated emergency grant.
package usecase

import (
	"context"

	"github.com/google/uuid"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

// RecordRepository defines record persistence. Deleted records are invisible to reads.
type RecordRepository interface {
	Create(ctx context.Context, record *recordsDomain.Record) error
	Get(ctx context.Context, subjectID string, recordID uuid.UUID) (*recordsDomain.Record, error)
	List(ctx context.Context, subjectID string, offset, limit int) ([]*recordsDomain.Record, error)
	Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error
	DeleteBySubject(ctx context.Context, subjectID string) (int64, error)
}

// PHIScanner reports the PHI categories found in text.
type PHIScanner interface {
	Scan(text string) phiDomain.ScanResult
}

// CreateInput is the content of a new record.
type CreateInput struct {
	SubjectID string
	Category  string
	Data      any
}

// RecordUseCase defines record management.
type RecordUseCase interface {
	Create(ctx context.Context, actorID string, input CreateInput) (*recordsDomain.Record, error)

	// Get authorizes access and returns the record with Data decrypted.
	Get(ctx context.Context, access recordsDomain.Access, recordID uuid.UUID) (*recordsDomain.Record, error)

	// List returns record metadata for a subject. Payloads are not decrypted.
	List(ctx context.Context, access recordsDomain.Access, offset, limit int) ([]*recordsDomain.Record, error)

	Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error

	// DeleteAll removes every record of a subject and returns how many were removed.
	DeleteAll(ctx context.Context, subjectID string) (int64, error)
}
