package dto

import (
	"time"

	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
)

// RecordResponse represents a record in API responses. Data is only present
// on reads that decrypted the payload.
type RecordResponse struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Category    string    `json:"category"`
	ContentHash string    `json:"content_hash"`
	PHITypes    []string  `json:"phi_types"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Data        any       `json:"data,omitempty"`
}

// ListRecordsResponse represents a page of record metadata.
type ListRecordsResponse struct {
	Data []RecordResponse `json:"data"`
}

// DeleteRecordsResponse reports a subject-wide delete.
type DeleteRecordsResponse struct {
	SubjectID string `json:"subject_id"`
	Deleted   int64  `json:"deleted"`
}

// MapRecordToResponse converts a record to its API representation.
func MapRecordToResponse(record *recordsDomain.Record) RecordResponse {
	return RecordResponse{
		ID:          record.ID.String(),
		SubjectID:   record.SubjectID,
		Category:    record.Category,
		ContentHash: record.ContentHash,
		PHITypes:    record.PHITypes,
		CreatedBy:   record.CreatedBy,
		CreatedAt:   record.CreatedAt,
		Data:        record.Data,
	}
}

// MapRecordsToListResponse converts records to a list response without content.
func MapRecordsToListResponse(records []*recordsDomain.Record) ListRecordsResponse {
	data := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		item := MapRecordToResponse(record)
		item.Data = nil
		data = append(data, item)
	}
	return ListRecordsResponse{Data: data}
}
