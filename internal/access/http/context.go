// Package http provides the authentication and authorization middleware that
// put the access guard in front of every PHI route.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// actorKey is a context key type for storing the authenticated actor.
type actorKey struct{}

// WithActor stores an authenticated actor in the context.
func WithActor(ctx context.Context, actor *accessDomain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor retrieves the authenticated actor from the context.
// Returns (nil, false) when the request is unauthenticated.
func GetActor(ctx context.Context) (*accessDomain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(*accessDomain.Actor)
	return actor, ok && actor != nil
}

// AuditActor resolves the audited identity for a request. Unauthenticated
// requests are recorded as "anonymous" with the caller's network identity.
func AuditActor(c *gin.Context) auditDomain.Actor {
	actor, ok := GetActor(c.Request.Context())
	if !ok {
		return auditDomain.Actor{
			ID:        "anonymous",
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
	}
	return auditDomain.Actor{
		ID:        actor.ID,
		Role:      actor.Role,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	}
}
