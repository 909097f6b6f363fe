// Package usecase implements the ConsentVerifier and consent management.
package usecase

import (
	"context"
	"time"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
)

// ConsentRepository persists current consent state and its append-only history.
type ConsentRepository interface {
	// Get returns the record with its history or ErrConsentNotFound.
	Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error)

	// Upsert stores the current state of a record, replacing any previous state.
	Upsert(ctx context.Context, record *consentDomain.Record) error

	// AppendEvent adds an event to the record's history.
	AppendEvent(ctx context.Context, subjectID, purpose string, event consentDomain.Event) error
}

// GrantInput describes a new or renewed consent.
type GrantInput struct {
	SubjectID string
	Grantee   string
	Purpose   string
	ExpiresAt *time.Time
}

// ConsentVerifier answers whether a requester may use a subject's data for a purpose.
type ConsentVerifier interface {
	// VerifyConsent is default-deny: missing, revoked, expired and mismatched
	// records and store errors all return false. Every call is audited.
	VerifyConsent(ctx context.Context, requester, subjectID, purpose string) bool
}

// ConsentUseCase manages consent records.
type ConsentUseCase interface {
	ConsentVerifier

	// Grant creates or renews consent and appends a GRANTED event.
	Grant(ctx context.Context, actorID string, input GrantInput) (*consentDomain.Record, error)

	// Revoke withdraws consent and appends a REVOKED event. The record is kept.
	Revoke(ctx context.Context, actorID, subjectID, purpose string) (*consentDomain.Record, error)

	// Get returns the record and its history.
	Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error)
}
