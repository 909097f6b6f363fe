package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// PostgreSQLAuditLogRepository is the append-only PostgreSQL audit sink and reader.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Name returns the sink name.
func (p *PostgreSQLAuditLogRepository) Name() string {
	return "postgresql"
}

// Write inserts entry. Re-inserting an existing ID is ignored so fallback replays are idempotent.
func (p *PostgreSQLAuditLogRepository) Write(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	args, err := entryArgs(entry.ID, entry)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + entryColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  ON CONFLICT (id) DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to write audit entry")
	}
	return nil
}

// List returns entries matching filter, newest first.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.ListFilter,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := filterClause(filter, dollarPlaceholder)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM audit_logs%s ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)-1, len(args),
	)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, false)
}

// ListBetween returns every entry in [from, to], oldest first.
func (p *PostgreSQLAuditLogRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + entryColumns + ` FROM audit_logs
			  WHERE occurred_at >= $1 AND occurred_at <= $2
			  ORDER BY occurred_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, false)
}

// ListByRequestID returns the entries recorded for requestID, oldest first.
func (p *PostgreSQLAuditLogRepository) ListByRequestID(
	ctx context.Context,
	requestID string,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + entryColumns + ` FROM audit_logs WHERE request_id = $1 ORDER BY occurred_at ASC`

	rows, err := querier.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return scanEntries(rows, false)
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
