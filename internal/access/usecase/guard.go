package usecase

import (
	"context"
	"log/slog"
	"slices"
	"time"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	"github.com/medmarket/phiguard/internal/metrics"
)

const anonymousActorID = "anonymous"

// Config holds the guard's timing and threshold settings.
type Config struct {
	SessionTimeout     time.Duration
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGrantFinder enables emergency access checks.
func WithGrantFinder(grants GrantFinder) GuardOption {
	return func(g *Guard) {
		g.grants = grants
	}
}

// WithGuardMetrics records every decision by reason code.
func WithGuardMetrics(m metrics.ComplianceMetrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithGuardClock overrides the time source used for session and grant expiry.
func WithGuardClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		g.now = now
	}
}

// Guard is the AccessControlGuard.
type Guard struct {
	cfg         Config
	auditLogger auditUseCase.AuditLogger
	rateLimiter RateLimiter
	lockout     LockoutStore
	grants      GrantFinder
	metrics     metrics.ComplianceMetrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewGuard creates a Guard. Without a GrantFinder every emergency request is denied.
func NewGuard(
	cfg Config,
	auditLogger auditUseCase.AuditLogger,
	rateLimiter RateLimiter,
	lockout LockoutStore,
	logger *slog.Logger,
	opts ...GuardOption,
) *Guard {
	g := &Guard{
		cfg:         cfg,
		auditLogger: auditLogger,
		rateLimiter: rateLimiter,
		lockout:     lockout,
		metrics:     metrics.NewNoOpComplianceMetrics(),
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize runs the checks in order and stops at the first failure:
// presence, lockout, session age, role, permissions, MFA, rate limit and,
// for emergency requests, an active grant.
func (g *Guard) Authorize(
	ctx context.Context,
	actor *accessDomain.Actor,
	opts accessDomain.Options,
) (*accessDomain.Decision, error) {
	if actor == nil || actor.ID == "" {
		return g.deny(ctx, actor, opts, accessDomain.ReasonAuthRequired, ""), nil
	}

	locked, err := g.lockout.IsLocked(ctx, actor.ID)
	if err != nil {
		return nil, g.storeError(ctx, actor, opts, "lockout", err)
	}
	if locked {
		return g.deny(ctx, actor, opts, accessDomain.ReasonAccountLocked, ""), nil
	}

	if g.sessionExpired(actor) {
		return g.deny(ctx, actor, opts, accessDomain.ReasonSessionExpired, ""), nil
	}

	if len(opts.Roles) > 0 && !slices.Contains(opts.Roles, actor.Role) {
		return g.deny(ctx, actor, opts, accessDomain.ReasonInsufficientRole, ""), nil
	}

	if !actor.HasPermissions(opts.Permissions) {
		return g.deny(ctx, actor, opts, accessDomain.ReasonInsufficientPermissions, ""), nil
	}

	if opts.RequireMFA && !actor.MFAVerified {
		return g.deny(ctx, actor, opts, accessDomain.ReasonMFARequired, accessDomain.StepMFA), nil
	}

	allowed, err := g.rateLimiter.Allow(ctx, actor.ID)
	if err != nil {
		return nil, g.storeError(ctx, actor, opts, "rate_limiter", err)
	}
	if !allowed {
		return g.deny(ctx, actor, opts, accessDomain.ReasonRateLimitExceeded, ""), nil
	}

	if opts.Emergency {
		if g.grants == nil {
			return g.deny(ctx, actor, opts, accessDomain.ReasonEmergencyAccessInvalid, ""), nil
		}
		grant, err := g.grants.Find(ctx, actor.ID, opts.Resource)
		if err != nil {
			return nil, g.storeError(ctx, actor, opts, "emergency_grants", err)
		}
		if !grant.ActiveAt(g.now()) {
			return g.deny(ctx, actor, opts, accessDomain.ReasonEmergencyAccessInvalid, ""), nil
		}
	}

	g.metrics.RecordAccessDecision(ctx, accessDomain.ReasonAllowed)
	return &accessDomain.Decision{Allowed: true, ReasonCode: accessDomain.ReasonAllowed}, nil
}

// RecordAuthFailure counts a failed login and locks the actor at the threshold.
func (g *Guard) RecordAuthFailure(ctx context.Context, actorID string) error {
	_, err := g.recordFailure(ctx, actorID)
	return err
}

// ClearFailures resets the failure count and any lock for actorID.
func (g *Guard) ClearFailures(ctx context.Context, actorID string) error {
	if err := g.lockout.Clear(ctx, actorID); err != nil {
		return apperrors.Wrap(err, "failed to clear access failures")
	}
	return nil
}

// sessionExpired reports whether more than SessionTimeout elapsed since
// IssuedAt. A session without an issuance time is treated as expired.
func (g *Guard) sessionExpired(actor *accessDomain.Actor) bool {
	if actor.IssuedAt.IsZero() {
		return true
	}
	return g.now().Sub(actor.IssuedAt) > g.cfg.SessionTimeout
}

func (g *Guard) recordFailure(ctx context.Context, actorID string) (bool, error) {
	count, err := g.lockout.RecordFailure(ctx, actorID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to record access failure")
	}
	if g.cfg.LockoutMaxAttempts <= 0 || count < g.cfg.LockoutMaxAttempts {
		return false, nil
	}
	if err := g.lockout.Lock(ctx, actorID, g.cfg.LockoutDuration); err != nil {
		return false, apperrors.Wrap(err, "failed to lock actor")
	}
	return true, nil
}

// deny writes the single audit entry for a denial and returns the decision.
// Lockout bookkeeping failures are logged; the denial stands either way.
func (g *Guard) deny(
	ctx context.Context,
	actor *accessDomain.Actor,
	opts accessDomain.Options,
	reason, step string,
) *accessDomain.Decision {
	details := map[string]any{
		"reasonCode":      reason,
		"requestedAction": opts.Action,
	}
	if len(opts.Roles) > 0 {
		details["requiredRoles"] = opts.Roles
	}
	if opts.Emergency {
		details["emergency"] = true
	}

	if actor != nil && actor.ID != "" && accessDomain.CountsTowardLockout(reason) {
		lockedNow, err := g.recordFailure(ctx, actor.ID)
		if err != nil {
			g.logger.Error("failed to update lockout state",
				slog.String("actor_id", actor.ID),
				slog.Any("error", err),
			)
		}
		if lockedNow {
			details["lockoutTriggered"] = true
		}
	}

	g.auditLogger.Log(ctx, &auditDomain.Entry{
		Level:    auditDomain.LevelWarning,
		Actor:    auditActor(actor),
		Action:   auditDomain.ActionAccessDenied,
		Resource: opts.Resource,
		Outcome:  auditDomain.OutcomeDenied,
		Details:  details,
	})
	g.metrics.RecordAccessDecision(ctx, reason)

	return &accessDomain.Decision{Allowed: false, ReasonCode: reason, RequiredStep: step}
}

// storeError audits a guard failure once and returns the wrapped error.
func (g *Guard) storeError(
	ctx context.Context,
	actor *accessDomain.Actor,
	opts accessDomain.Options,
	store string,
	err error,
) error {
	g.logger.Error("access guard store failed",
		slog.String("store", store),
		slog.String("actor_id", actor.ID),
		slog.Any("error", err),
	)
	g.auditLogger.Log(ctx, &auditDomain.Entry{
		Level:    auditDomain.LevelError,
		Actor:    auditActor(actor),
		Action:   auditDomain.ActionAccessGuardError,
		Resource: opts.Resource,
		Outcome:  auditDomain.OutcomeFailure,
		Details:  map[string]any{"store": store, "requestedAction": opts.Action},
	})
	return apperrors.Wrapf(err, "access guard %s unavailable", store)
}

func auditActor(actor *accessDomain.Actor) auditDomain.Actor {
	if actor == nil || actor.ID == "" {
		return auditDomain.Actor{ID: anonymousActorID}
	}
	return auditDomain.Actor{
		ID:        actor.ID,
		Role:      actor.Role,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	}
}
