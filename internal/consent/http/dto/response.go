package dto

import (
	"time"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
)

// ConsentEventResponse is one history item.
type ConsentEventResponse struct {
	Action     string     `json:"action"`
	ActorID    string     `json:"actor_id"`
	Grantee    string     `json:"grantee,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// ConsentResponse represents a consent record in API responses.
type ConsentResponse struct {
	SubjectID string                 `json:"subject_id"`
	Grantee   string                 `json:"grantee"`
	Purpose   string                 `json:"purpose"`
	Granted   bool                   `json:"granted"`
	Active    bool                   `json:"active"`
	IssuedAt  *time.Time             `json:"issued_at,omitempty"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	History   []ConsentEventResponse `json:"history"`
}

// VerifyConsentResponse is the result of a consent check.
type VerifyConsentResponse struct {
	SubjectID string `json:"subject_id"`
	Purpose   string `json:"purpose"`
	Requester string `json:"requester"`
	Consented bool   `json:"consented"`
}

// MapRecordToResponse converts a record to its API representation.
func MapRecordToResponse(record *consentDomain.Record, now time.Time) ConsentResponse {
	history := make([]ConsentEventResponse, 0, len(record.History))
	for _, e := range record.History {
		history = append(history, ConsentEventResponse{
			Action:     e.Action,
			ActorID:    e.ActorID,
			Grantee:    e.Grantee,
			ExpiresAt:  e.ExpiresAt,
			OccurredAt: e.OccurredAt,
		})
	}
	return ConsentResponse{
		SubjectID: record.SubjectID,
		Grantee:   record.Grantee,
		Purpose:   record.Purpose,
		Granted:   record.Granted,
		Active:    record.IsActive(now),
		IssuedAt:  record.IssuedAt,
		ExpiresAt: record.ExpiresAt,
		History:   history,
	}
}
