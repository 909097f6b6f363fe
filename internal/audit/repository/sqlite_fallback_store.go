package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const fallbackSchema = `
	CREATE TABLE IF NOT EXISTS pending_audit_entries (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		reconciled_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_pending_audit_entries_pending
		ON pending_audit_entries(reconciled_at, created_at);
`

// SQLiteFallbackStore keeps audit entries the primary sink rejected in a local
// SQLite file until they are replayed.
type SQLiteFallbackStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteFallbackStore opens (creating if needed) the fallback database at path.
func OpenSQLiteFallbackStore(ctx context.Context, path string) (*SQLiteFallbackStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open audit fallback database at %q", path)
	}
	// SQLite serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fallbackSchema); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, "failed to create audit fallback schema")
	}
	return NewSQLiteFallbackStore(db), nil
}

// Write stores entry as JSON. Writing the same entry twice is a no-op.
func (s *SQLiteFallbackStore) Write(ctx context.Context, entry *auditDomain.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry")
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO pending_audit_entries (id, payload, created_at) VALUES (?, ?, ?)`,
		entry.ID.String(),
		string(payload),
		s.now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to write audit fallback entry")
	}
	return nil
}

// ListPending returns up to limit entries not yet reconciled, oldest first.
func (s *SQLiteFallbackStore) ListPending(ctx context.Context, limit int) ([]*auditDomain.Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT payload FROM pending_audit_entries
		 WHERE reconciled_at IS NULL
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.Entry, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pending audit entry")
		}

		var entry auditDomain.Entry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal pending audit entry")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pending audit entries")
	}
	return entries, nil
}

// MarkReconciled flags ids as replayed. Rows are kept as a local record of the outage.
func (s *SQLiteFallbackStore) MarkReconciled(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, s.now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	query := `UPDATE pending_audit_entries SET reconciled_at = ? WHERE id IN (?` +
		strings.Repeat(", ?", len(ids)-1) + `)`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to mark audit entries reconciled")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteFallbackStore) Close() error {
	return s.db.Close()
}

// NewSQLiteFallbackStore wraps an already initialised database.
func NewSQLiteFallbackStore(db *sql.DB) *SQLiteFallbackStore {
	return &SQLiteFallbackStore{db: db, now: time.Now}
}
