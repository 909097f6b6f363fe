// Package repository implements encrypted record persistence for PostgreSQL and MySQL.
// Payloads and PHI categories are stored as JSON; deletes are soft.
package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/medmarket/phiguard/internal/errors"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

const recordColumns = `id, subject_id, category, payload, content_hash, phi_types, created_by, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// idDecoder turns the raw id column into a UUID: text for PostgreSQL, BINARY(16) for MySQL.
type idDecoder func(raw []byte) (uuid.UUID, error)

func decodeTextID(raw []byte) (uuid.UUID, error) {
	return uuid.ParseBytes(raw)
}

func decodeBinaryID(raw []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := id.UnmarshalBinary(raw)
	return id, err
}

// encodeRecord returns the JSON columns of record.
func encodeRecord(record *recordsDomain.Record) (payload, phiTypes []byte, err error) {
	payload, err = json.Marshal(record.Payload)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal record payload")
	}
	types := record.PHITypes
	if types == nil {
		types = []string{}
	}
	phiTypes, err = json.Marshal(types)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal phi types")
	}
	return payload, phiTypes, nil
}

func scanRecord(row rowScanner, decodeID idDecoder) (*recordsDomain.Record, error) {
	var record recordsDomain.Record
	var id, payload, phiTypes []byte
	var deletedAt sql.NullTime

	err := row.Scan(
		&id,
		&record.SubjectID,
		&record.Category,
		&payload,
		&record.ContentHash,
		&phiTypes,
		&record.CreatedBy,
		&record.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan record")
	}

	if record.ID, err = decodeID(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode record id")
	}
	if err := json.Unmarshal(payload, &record.Payload); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal record payload")
	}
	if err := json.Unmarshal(phiTypes, &record.PHITypes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal phi types")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		record.DeletedAt = &t
	}
	return &record, nil
}

func scanRecords(rows *sql.Rows, decodeID idDecoder) ([]*recordsDomain.Record, error) {
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*recordsDomain.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows, decodeID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// affectedOne maps a zero-row update to ErrRecordNotFound.
func affectedOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}
