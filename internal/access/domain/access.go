// Package domain defines actors, authorization options and access decisions.
package domain

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// Reason codes, in the order the guard evaluates them.
const (
	ReasonAllowed                 = "ALLOWED"
	ReasonAuthRequired            = "AUTH_REQUIRED"
	ReasonAccountLocked           = "ACCOUNT_LOCKED"
	ReasonSessionExpired          = "SESSION_EXPIRED"
	ReasonInsufficientRole        = "INSUFFICIENT_ROLE"
	ReasonInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	ReasonMFARequired             = "MFA_REQUIRED"
	ReasonRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	ReasonEmergencyAccessInvalid  = "EMERGENCY_ACCESS_INVALID"
)

// StepMFA tells the client to complete multi-factor authentication.
const StepMFA = "mfa"

// Roles known to the engine.
const (
	RolePatient    = "patient"
	RolePhysician  = "physician"
	RoleNurse      = "nurse"
	RoleResearcher = "researcher"
	RoleAdmin      = "admin"
)

// Actor is an authenticated identity. IssuedAt is the token's iat claim and
// anchors the session age.
type Actor struct {
	ID          string
	Role        string
	Permissions []string
	MFAVerified bool
	IssuedAt    time.Time
	IP          string
	UserAgent   string
}

// HasPermissions reports whether every permission in required is held.
func (a *Actor) HasPermissions(required []string) bool {
	for _, p := range required {
		if !slices.Contains(a.Permissions, p) {
			return false
		}
	}
	return true
}

// Options describe what a request needs. Empty Roles or Permissions disable the check.
type Options struct {
	Roles       []string
	Permissions []string
	RequireMFA  bool
	// Emergency marks a request that relies on an emergency grant for Resource.
	Emergency bool
	Resource  string
	Action    string
}

// Decision is the ephemeral result of an authorization check.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	ReasonCode   string `json:"reasonCode"`
	RequiredStep string `json:"requiredStep,omitempty"`
}

// Err returns nil for an allowed decision and an *AccessDeniedError otherwise.
func (d *Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &AccessDeniedError{Reason: d.ReasonCode, Step: d.RequiredStep}
}

// AccessDeniedError carries a stable reason code and, for MFA, the next step.
type AccessDeniedError struct {
	Reason string
	Step   string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

// ErrorCode returns the reason code.
func (e *AccessDeniedError) ErrorCode() string {
	return e.Reason
}

// NextStep returns the step the client must complete, if any.
func (e *AccessDeniedError) NextStep() string {
	return e.Step
}

// Unwrap maps the reason to the sentinel that drives the HTTP status.
func (e *AccessDeniedError) Unwrap() error {
	switch e.Reason {
	case ReasonAuthRequired, ReasonSessionExpired:
		return apperrors.ErrUnauthorized
	case ReasonAccountLocked:
		return apperrors.ErrLocked
	case ReasonRateLimitExceeded:
		return apperrors.ErrTooManyRequests
	default:
		return apperrors.ErrForbidden
	}
}

// CountsTowardLockout reports whether a denial for reason is a failed attempt.
// Missing credentials, an existing lock, throttling, session expiry and an
// MFA step-up prompt are not.
func CountsTowardLockout(reason string) bool {
	switch reason {
	case ReasonAuthRequired, ReasonAccountLocked, ReasonRateLimitExceeded,
		ReasonSessionExpired, ReasonMFARequired:
		return false
	default:
		return true
	}
}
