// Package domain defines consent records and their lifecycle events.
package domain

import (
	"time"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// AnyGrantee on a record permits every requester.
const AnyGrantee = "*"

// History event actions.
const (
	EventGranted = "GRANTED"
	EventRevoked = "REVOKED"
)

// Denial reasons recorded with every consent check.
const (
	ReasonGranted         = "granted"
	ReasonNotFound        = "not_found"
	ReasonRevoked         = "revoked"
	ReasonNotYetValid     = "not_yet_valid"
	ReasonExpired         = "expired"
	ReasonGranteeMismatch = "grantee_mismatch"
	ReasonStoreError      = "store_error"
)

// ErrConsentNotFound is returned when no record exists for a subject and purpose.
var ErrConsentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "consent not found")

// Event is an append-only history item.
type Event struct {
	Action     string     `json:"action"`
	ActorID    string     `json:"actorId"`
	Grantee    string     `json:"grantee,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// Record is a data subject's consent for one purpose. Expiry turns a grant
// into "not consented" without removing the record.
type Record struct {
	SubjectID string
	Grantee   string
	Purpose   string
	Granted   bool
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	History   []Event
}

// IsActive reports whether the record grants consent at now, ignoring the grantee.
func (r *Record) IsActive(now time.Time) bool {
	return r.status(now) == ReasonGranted
}

// Check returns ReasonGranted when requester may use the subject's data at now,
// and the reason consent is missing otherwise. A nil record is not found and a
// record without a grantee matches nobody.
func (r *Record) Check(requester string, now time.Time) string {
	if status := r.status(now); status != ReasonGranted {
		return status
	}
	if r.Grantee != AnyGrantee && (r.Grantee == "" || r.Grantee != requester) {
		return ReasonGranteeMismatch
	}
	return ReasonGranted
}

func (r *Record) status(now time.Time) string {
	switch {
	case r == nil:
		return ReasonNotFound
	case !r.Granted || r.IssuedAt == nil:
		return ReasonRevoked
	case now.Before(*r.IssuedAt):
		return ReasonNotYetValid
	case r.ExpiresAt != nil && !now.Before(*r.ExpiresAt):
		return ReasonExpired
	default:
		return ReasonGranted
	}
}
