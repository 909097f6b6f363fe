package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// PostgreSQLConsentRepository implements consent persistence for PostgreSQL.
type PostgreSQLConsentRepository struct {
	db *sql.DB
}

// Get returns the record for (subjectID, purpose) with its history, oldest event first.
func (p *PostgreSQLConsentRepository) Get(
	ctx context.Context,
	subjectID, purpose string,
) (*consentDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + consentColumns + ` FROM consents WHERE subject_id = $1 AND purpose = $2`
	record, err := scanRecord(querier.QueryRowContext(ctx, query, subjectID, purpose))
	if err != nil {
		return nil, err
	}

	eventsQuery := `SELECT ` + eventColumns + ` FROM consent_events
					WHERE subject_id = $1 AND purpose = $2
					ORDER BY occurred_at ASC, id ASC`
	rows, err := querier.QueryContext(ctx, eventsQuery, subjectID, purpose)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list consent events")
	}
	if record.History, err = scanEvents(rows); err != nil {
		return nil, err
	}
	return record, nil
}

// Upsert stores the current state of record.
func (p *PostgreSQLConsentRepository) Upsert(ctx context.Context, record *consentDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consents (` + consentColumns + `, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())
			  ON CONFLICT (subject_id, purpose) DO UPDATE SET
			  grantee = EXCLUDED.grantee,
			  granted = EXCLUDED.granted,
			  issued_at = EXCLUDED.issued_at,
			  expires_at = EXCLUDED.expires_at,
			  updated_at = NOW()`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.SubjectID,
		record.Purpose,
		record.Grantee,
		record.Granted,
		nullTime(record.IssuedAt),
		nullTime(record.ExpiresAt),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert consent")
	}
	return nil
}

// AppendEvent inserts a history event. Events are never updated or deleted.
func (p *PostgreSQLConsentRepository) AppendEvent(
	ctx context.Context,
	subjectID, purpose string,
	event consentDomain.Event,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consent_events (id, subject_id, purpose, ` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		uuid.Must(uuid.NewV7()).String(),
		subjectID,
		purpose,
		event.Action,
		event.ActorID,
		event.Grantee,
		nullTime(event.ExpiresAt),
		event.OccurredAt.UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to append consent event")
	}
	return nil
}

// NewPostgreSQLConsentRepository creates a new PostgreSQL consent repository.
func NewPostgreSQLConsentRepository(db *sql.DB) *PostgreSQLConsentRepository {
	return &PostgreSQLConsentRepository{db: db}
}
