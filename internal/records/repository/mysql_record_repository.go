package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

// MySQLRecordRepository implements record persistence for MySQL.
type MySQLRecordRepository struct {
	db *sql.DB
}

// Create inserts a new record.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	payload, phiTypes, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO phi_records (` + recordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.SubjectID,
		record.Category,
		payload,
		record.ContentHash,
		phiTypes,
		record.CreatedBy,
		record.CreatedAt,
		record.DeletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get retrieves a non-deleted record of subjectID.
func (m *MySQLRecordRepository) Get(
	ctx context.Context,
	subjectID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := recordID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT ` + recordColumns + ` FROM phi_records
			  WHERE id = ? AND subject_id = ? AND deleted_at IS NULL`

	return scanRecord(querier.QueryRowContext(ctx, query, id, subjectID), decodeBinaryID)
}

// List returns non-deleted records of subjectID, newest first.
func (m *MySQLRecordRepository) List(
	ctx context.Context,
	subjectID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + recordColumns + ` FROM phi_records
			  WHERE subject_id = ? AND deleted_at IS NULL
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, subjectID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	return scanRecords(rows, decodeBinaryID)
}

// Delete soft deletes a record.
func (m *MySQLRecordRepository) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := recordID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `UPDATE phi_records SET deleted_at = UTC_TIMESTAMP(6)
			  WHERE id = ? AND subject_id = ? AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, id, subjectID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return affectedOne(result)
}

// DeleteBySubject soft deletes every record of subjectID.
func (m *MySQLRecordRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE phi_records SET deleted_at = UTC_TIMESTAMP(6)
			  WHERE subject_id = ? AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, subjectID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete subject records")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}

// NewMySQLRecordRepository creates a new MySQL record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
