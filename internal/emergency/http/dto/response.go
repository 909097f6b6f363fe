package dto

import (
	"time"

	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

// GrantResponse represents an emergency grant in API responses.
type GrantResponse struct {
	ID         string    `json:"id"`
	Grantee    string    `json:"grantee"`
	Resource   string    `json:"resource"`
	ApprovedBy string    `json:"approved_by,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// MapGrantToResponse converts a grant to its API representation.
func MapGrantToResponse(grant *emergencyDomain.Grant) GrantResponse {
	return GrantResponse{
		ID:         grant.ID.String(),
		Grantee:    grant.Grantee,
		Resource:   grant.Resource,
		ApprovedBy: grant.ApprovedBy,
		IssuedAt:   grant.IssuedAt,
		ExpiresAt:  grant.ExpiresAt,
	}
}
