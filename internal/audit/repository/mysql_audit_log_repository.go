package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// MySQLAuditLogRepository is the append-only MySQL audit sink and reader.
// IDs are stored as BINARY(16).
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Name returns the sink name.
func (m *MySQLAuditLogRepository) Name() string {
	return "mysql"
}

// Write inserts entry. Re-inserting an existing ID is ignored so fallback replays are idempotent.
func (m *MySQLAuditLogRepository) Write(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	args, err := entryArgs(id, entry)
	if err != nil {
		return err
	}

	query := `INSERT IGNORE INTO audit_logs (` + entryColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to write audit entry")
	}
	return nil
}

// List returns entries matching filter, newest first.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	where, args := filterClause(filter, questionPlaceholder)
	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + entryColumns + ` FROM audit_logs` + where +
		` ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, true)
}

// ListBetween returns every entry in [from, to], oldest first.
func (m *MySQLAuditLogRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + entryColumns + ` FROM audit_logs
			  WHERE occurred_at >= ? AND occurred_at <= ?
			  ORDER BY occurred_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, true)
}

// ListByRequestID returns the entries recorded for requestID, oldest first.
func (m *MySQLAuditLogRepository) ListByRequestID(
	ctx context.Context,
	requestID string,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + entryColumns + ` FROM audit_logs WHERE request_id = ? ORDER BY occurred_at ASC`

	rows, err := querier.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, true)
}

// NewMySQLAuditLogRepository creates a new MySQL audit repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
