// Package usecase implements the AccessControlGuard: an ordered short-circuit
// authorization chain with per-actor lockout and rate limiting.
package usecase

import (
	"context"
	"time"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
)

// RateLimiter counts requests per key. Implementations must be atomic per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LockoutStore tracks failed attempts and active locks per key.
type LockoutStore interface {
	// IsLocked reports whether key is currently locked.
	IsLocked(ctx context.Context, key string) (bool, error)

	// RecordFailure counts a failed attempt and returns the number of failures
	// in the current window.
	RecordFailure(ctx context.Context, key string) (int, error)

	// Lock locks key for d and resets its failure count.
	Lock(ctx context.Context, key string, d time.Duration) error

	// Clear removes failures and any lock for key.
	Clear(ctx context.Context, key string) error
}

// GrantFinder looks up the most recent emergency grant for grantee on resource.
// It returns nil without error when there is none.
type GrantFinder interface {
	Find(ctx context.Context, grantee, resource string) (*emergencyDomain.Grant, error)
}

// AccessGuard authorizes actors.
type AccessGuard interface {
	// Authorize evaluates opts for actor. A denial is returned as a Decision,
	// not an error; errors are reserved for store failures.
	Authorize(ctx context.Context, actor *accessDomain.Actor, opts accessDomain.Options) (*accessDomain.Decision, error)

	// RecordAuthFailure counts a failed login for actorID and locks it at the threshold.
	RecordAuthFailure(ctx context.Context, actorID string) error

	// ClearFailures resets the failure count and any lock for actorID.
	ClearFailures(ctx context.Context, actorID string) error
}
