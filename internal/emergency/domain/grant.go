// Package domain defines break-the-glass emergency access grants.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// DefaultWindow is how long a grant stays usable.
const DefaultWindow = 30 * time.Minute

// ErrReasonRequired indicates an emergency request without a justification.
var ErrReasonRequired = apperrors.Wrap(apperrors.ErrInvalidInput, "emergency access reason is required")

// Grant lets Grantee bypass consent for Resource until ExpiresAt. Grants are
// never renewed: a new request with a new reason creates a new grant.
type Grant struct {
	ID         uuid.UUID `json:"id"`
	Grantee    string    `json:"grantee"`
	Resource   string    `json:"resource"`
	Reason     string    `json:"reason"`
	ApprovedBy string    `json:"approvedBy,omitempty"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ActiveAt reports whether the grant is usable at now. A grant is rejected
// from ExpiresAt onwards.
func (g *Grant) ActiveAt(now time.Time) bool {
	return g != nil && !now.Before(g.IssuedAt) && now.Before(g.ExpiresAt)
}
