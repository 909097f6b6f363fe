// Package usecase implements the break-the-glass EmergencyAccessHandler.
package usecase

import (
	"context"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

// GrantStore keeps grants until they expire. Expiry is enforced by the guard;
// store TTLs only reclaim space.
type GrantStore interface {
	Save(ctx context.Context, grant *emergencyDomain.Grant) error

	// Find returns the latest grant for grantee on resource, or nil.
	Find(ctx context.Context, grantee, resource string) (*emergencyDomain.Grant, error)
}

// Notifier tells the data subject that their records were opened under an
// emergency grant.
type Notifier interface {
	NotifyEmergencyAccess(ctx context.Context, grant *emergencyDomain.Grant) error
}

// EmergencyAccessHandler issues emergency grants.
type EmergencyAccessHandler interface {
	GrantEmergencyAccess(
		ctx context.Context,
		actor *accessDomain.Actor,
		resource, reason, approvedBy string,
	) (*emergencyDomain.Grant, error)
}
