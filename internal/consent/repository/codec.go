// Package repository provides consent persistence for PostgreSQL, MySQL and memory.
package repository

import (
	"database/sql"
	"time"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const (
	consentColumns = `subject_id, purpose, grantee, granted, issued_at, expires_at`
	eventColumns   = `action, actor_id, grantee, expires_at, occurred_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func scanRecord(row rowScanner) (*consentDomain.Record, error) {
	var record consentDomain.Record
	var issuedAt, expiresAt sql.NullTime

	err := row.Scan(
		&record.SubjectID,
		&record.Purpose,
		&record.Grantee,
		&record.Granted,
		&issuedAt,
		&expiresAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, consentDomain.ErrConsentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get consent")
	}

	record.IssuedAt = timePtr(issuedAt)
	record.ExpiresAt = timePtr(expiresAt)
	return &record, nil
}

func scanEvents(rows *sql.Rows) ([]consentDomain.Event, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]consentDomain.Event, 0)
	for rows.Next() {
		var event consentDomain.Event
		var expiresAt sql.NullTime
		if err := rows.Scan(
			&event.Action,
			&event.ActorID,
			&event.Grantee,
			&expiresAt,
			&event.OccurredAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan consent event")
		}
		event.ExpiresAt = timePtr(expiresAt)
		event.OccurredAt = event.OccurredAt.UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate consent events")
	}
	return events, nil
}
