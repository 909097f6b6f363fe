package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// MySQLConsentRepository implements consent persistence for MySQL.
type MySQLConsentRepository struct {
	db *sql.DB
}

// Get returns the record for (subjectID, purpose) with its history, oldest event first.
func (m *MySQLConsentRepository) Get(
	ctx context.Context,
	subjectID, purpose string,
) (*consentDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + consentColumns + ` FROM consents WHERE subject_id = ? AND purpose = ?`
	record, err := scanRecord(querier.QueryRowContext(ctx, query, subjectID, purpose))
	if err != nil {
		return nil, err
	}

	eventsQuery := `SELECT ` + eventColumns + ` FROM consent_events
					WHERE subject_id = ? AND purpose = ?
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
func (m *MySQLConsentRepository) Upsert(ctx context.Context, record *consentDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO consents (` + consentColumns + `, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(6))
			  ON DUPLICATE KEY UPDATE
			  grantee = VALUES(grantee),
			  granted = VALUES(granted),
			  issued_at = VALUES(issued_at),
			  expires_at = VALUES(expires_at),
			  updated_at = UTC_TIMESTAMP(6)`

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
func (m *MySQLConsentRepository) AppendEvent(
	ctx context.Context,
	subjectID, purpose string,
	event consentDomain.Event,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := uuid.Must(uuid.NewV7()).MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal consent event id")
	}

	query := `INSERT INTO consent_events (id, subject_id, purpose, ` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// NewMySQLConsentRepository creates a new MySQL consent repository.
func NewMySQLConsentRepository(db *sql.DB) *MySQLConsentRepository {
	return &MySQLConsentRepository{db: db}
}
