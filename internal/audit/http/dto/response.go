package dto

import (
	"encoding/hex"
	"time"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
	ID                string            `json:"id"`
	RequestID         string            `json:"request_id"`
	Timestamp         time.Time         `json:"timestamp"`
	Level             string            `json:"level"`
	Actor             auditDomain.Actor `json:"actor"`
	Action            string            `json:"action"`
	Resource          string            `json:"resource"`
	Outcome           string            `json:"outcome"`
	DurationMs        int64             `json:"duration_ms"`
	Details           map[string]any    `json:"details,omitempty"`
	CorrectsRequestID string            `json:"corrects_request_id,omitempty"`
	RetainUntil       time.Time         `json:"retain_until"`
	Signature         string            `json:"signature,omitempty"`
}

// MapEntryToResponse converts a domain audit entry to an API response.
func MapEntryToResponse(entry *auditDomain.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:                entry.ID.String(),
		RequestID:         entry.RequestID,
		Timestamp:         entry.Timestamp,
		Level:             string(entry.Level),
		Actor:             entry.Actor,
		Action:            entry.Action,
		Resource:          entry.Resource,
		Outcome:           string(entry.Outcome),
		DurationMs:        entry.DurationMs,
		Details:           entry.Details,
		CorrectsRequestID: entry.CorrectsRequestID,
		RetainUntil:       entry.RetainUntil,
		Signature:         hex.EncodeToString(entry.Signature),
	}
}

// ListAuditLogsResponse represents a page of audit entries.
type ListAuditLogsResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// MapEntriesToListResponse converts domain audit entries to a list API response.
func MapEntriesToListResponse(entries []*auditDomain.Entry) ListAuditLogsResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapEntryToResponse(entry))
	}
	return ListAuditLogsResponse{Data: data}
}
