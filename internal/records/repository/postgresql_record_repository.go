package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

// PostgreSQLRecordRepository implements record persistence for PostgreSQL.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// Create inserts a new record.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	payload, phiTypes, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO phi_records (` + recordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
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
func (p *PostgreSQLRecordRepository) Get(
	ctx context.Context,
	subjectID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM phi_records
			  WHERE id = $1 AND subject_id = $2 AND deleted_at IS NULL`

	return scanRecord(querier.QueryRowContext(ctx, query, recordID, subjectID), decodeTextID)
}

// List returns non-deleted records of subjectID, newest first.
func (p *PostgreSQLRecordRepository) List(
	ctx context.Context,
	subjectID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM phi_records
			  WHERE subject_id = $1 AND deleted_at IS NULL
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, subjectID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	return scanRecords(rows, decodeTextID)
}

// Delete soft deletes a record.
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, subjectID string, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE phi_records SET deleted_at = NOW()
			  WHERE id = $1 AND subject_id = $2 AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, recordID, subjectID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return affectedOne(result)
}

// DeleteBySubject soft deletes every record of subjectID.
func (p *PostgreSQLRecordRepository) DeleteBySubject(ctx context.Context, subjectID string) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE phi_records SET deleted_at = NOW()
			  WHERE subject_id = $1 AND deleted_at IS NULL`

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

// NewPostgreSQLRecordRepository creates a new PostgreSQL record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}
