// Package domain defines audit log entries, their levels and outcomes.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level is the severity attached to an entry by the sink contract.
type Level string

const (
	LevelInfo      Level = "INFO"
	LevelWarning   Level = "WARNING"
	LevelError     Level = "ERROR"
	LevelEmergency Level = "EMERGENCY"
)

// Outcome is the terminal result of the audited operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeDenied  Outcome = "DENIED"
)

// Actions written by the engine itself.
const (
	ActionAuditWriteFailed = "AUDIT_WRITE_FAILED"
	ActionAuditCorrection  = "AUDIT_CORRECTION"
	ActionAccessDenied     = "ACCESS_DENIED"
	ActionAccessGuardError = "ACCESS_GUARD_ERROR"
	ActionConsentCheck     = "CONSENT_CHECK"
	ActionConsentGranted   = "CONSENT_GRANTED"
	ActionConsentRevoked   = "CONSENT_REVOKED"
	ActionEmergencyAccess  = "EMERGENCY_ACCESS_GRANTED"
	ActionEmergencyDenied  = "EMERGENCY_ACCESS_DENIED"
)

// Actor identifies who performed the audited operation.
type Actor struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// Entry is an immutable, signed audit record.
//
// Entries are append-only: nothing in this module updates or deletes them. A
// correction is a new entry whose CorrectsRequestID references the original.
// RetainUntil is always at least six years after Timestamp.
type Entry struct {
	ID                uuid.UUID      `json:"id"`
	RequestID         string         `json:"requestId"`
	Timestamp         time.Time      `json:"timestamp"`
	Level             Level          `json:"level"`
	Actor             Actor          `json:"actor"`
	Action            string         `json:"action"`
	Resource          string         `json:"resource"`
	Outcome           Outcome        `json:"outcome"`
	DurationMs        int64          `json:"durationMs"`
	Details           map[string]any `json:"details,omitempty"`
	CorrectsRequestID string         `json:"correctsRequestId,omitempty"`
	RetainUntil       time.Time      `json:"retainUntil"`
	Signature         []byte         `json:"signature,omitempty"`
}

// RequestMeta carries per-request identity used to complete entries.
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta stores request metadata in ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the request metadata stored in ctx, if any.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

// ListFilter narrows audit log queries. Zero values disable a filter.
type ListFilter struct {
	From    *time.Time
	To      *time.Time
	ActorID string
	Action  string
	Offset  int
	Limit   int
}

// VerificationReport summarises signature checks over a time range.
type VerificationReport struct {
	Total      int         `json:"total"`
	Valid      int         `json:"valid"`
	Invalid    int         `json:"invalid"`
	Unsigned   int         `json:"unsigned"`
	InvalidIDs []uuid.UUID `json:"invalidIds"`
}

// Passed reports whether every entry carried a valid signature.
func (r *VerificationReport) Passed() bool {
	return r.Invalid == 0 && r.Unsigned == 0
}
