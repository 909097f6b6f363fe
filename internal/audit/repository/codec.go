// Package repository implements audit sinks, readers, the local fallback store
// and the archive store.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const entryColumns = `id, request_id, occurred_at, level, actor_id, actor_role, actor_ip, actor_user_agent,
	action, resource, outcome, duration_ms, details, corrects_request_id, retain_until, signature`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// entryArgs returns the insert arguments in entryColumns order. id is passed
// separately because PostgreSQL and MySQL encode UUIDs differently.
func entryArgs(id any, entry *auditDomain.Entry) ([]any, error) {
	// NULL when there are no details.
	var details any
	if len(entry.Details) > 0 {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal audit entry details")
		}
		details = encoded
	}

	var corrects sql.NullString
	if entry.CorrectsRequestID != "" {
		corrects = sql.NullString{String: entry.CorrectsRequestID, Valid: true}
	}

	return []any{
		id,
		entry.RequestID,
		entry.Timestamp,
		string(entry.Level),
		entry.Actor.ID,
		entry.Actor.Role,
		entry.Actor.IP,
		entry.Actor.UserAgent,
		entry.Action,
		entry.Resource,
		string(entry.Outcome),
		entry.DurationMs,
		details,
		corrects,
		entry.RetainUntil,
		entry.Signature,
	}, nil
}

// scanEntry reads one row selected with entryColumns. With binaryID the id
// column holds 16 raw bytes instead of a native UUID.
func scanEntry(row rowScanner, binaryID bool) (*auditDomain.Entry, error) {
	var (
		entry    auditDomain.Entry
		rawID    []byte
		level    string
		outcome  string
		details  []byte
		corrects sql.NullString
	)

	var idDest any = &entry.ID
	if binaryID {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&entry.RequestID,
		&entry.Timestamp,
		&level,
		&entry.Actor.ID,
		&entry.Actor.Role,
		&entry.Actor.IP,
		&entry.Actor.UserAgent,
		&entry.Action,
		&entry.Resource,
		&outcome,
		&entry.DurationMs,
		&details,
		&corrects,
		&entry.RetainUntil,
		&entry.Signature,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan audit entry")
	}

	if binaryID {
		if entry.ID, err = uuid.FromBytes(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
		}
	}

	entry.Level = auditDomain.Level(level)
	entry.Outcome = auditDomain.Outcome(outcome)
	entry.CorrectsRequestID = corrects.String
	entry.Timestamp = entry.Timestamp.UTC()
	entry.RetainUntil = entry.RetainUntil.UTC()

	if details != nil {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry details")
		}
	}

	return &entry, nil
}

func scanEntries(rows *sql.Rows, binaryID bool) ([]*auditDomain.Entry, error) {
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows, binaryID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}
	return entries, nil
}

// filterClause builds the WHERE clause for filter. placeholder returns the
// bind marker for the n-th argument (1-based).
func filterClause(filter auditDomain.ListFilter, placeholder func(n int) string) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, placeholder(len(args))))
	}

	if filter.From != nil {
		add("occurred_at >= %s", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at <= %s", *filter.To)
	}
	if filter.ActorID != "" {
		add("actor_id = %s", filter.ActorID)
	}
	if filter.Action != "" {
		add("action = %s", filter.Action)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func questionPlaceholder(int) string {
	return "?"
}
