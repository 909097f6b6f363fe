package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessUseCase "github.com/medmarket/phiguard/internal/access/usecase"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// ActionEmergencyRequest is the guard action recorded for emergency requests.
const ActionEmergencyRequest = "EMERGENCY_ACCESS_REQUEST"

// DefaultEligibleRoles may request emergency access.
var DefaultEligibleRoles = []string{accessDomain.RolePhysician, accessDomain.RoleNurse}

// Config holds the grant window and the roles allowed to break the glass.
type Config struct {
	Window        time.Duration
	EligibleRoles []string
}

// Option configures the emergency use case.
type Option func(*emergencyUseCase)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(uc *emergencyUseCase) {
		uc.now = now
	}
}

type emergencyUseCase struct {
	cfg         Config
	guard       accessUseCase.AccessGuard
	store       GrantStore
	notifier    Notifier
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
	now         func() time.Time
}

// NewEmergencyAccessHandler creates the handler. A zero Window uses the
// default and empty EligibleRoles use DefaultEligibleRoles.
func NewEmergencyAccessHandler(
	cfg Config,
	guard accessUseCase.AccessGuard,
	store GrantStore,
	notifier Notifier,
	auditLogger auditUseCase.AuditLogger,
	logger *slog.Logger,
	opts ...Option,
) EmergencyAccessHandler {
	if cfg.Window <= 0 {
		cfg.Window = emergencyDomain.DefaultWindow
	}
	if len(cfg.EligibleRoles) == 0 {
		cfg.EligibleRoles = DefaultEligibleRoles
	}
	uc := &emergencyUseCase{
		cfg:         cfg,
		guard:       guard,
		store:       store,
		notifier:    notifier,
		auditLogger: auditLogger,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GrantEmergencyAccess validates the reason, runs the guard's role check,
// stores a grant for the configured window and records it at EMERGENCY level.
// The data subject notification is best effort.
func (uc *emergencyUseCase) GrantEmergencyAccess(
	ctx context.Context,
	actor *accessDomain.Actor,
	resource, reason, approvedBy string,
) (*emergencyDomain.Grant, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		uc.auditDenied(ctx, actor, resource, "reason_required")
		return nil, emergencyDomain.ErrReasonRequired
	}
	if strings.TrimSpace(resource) == "" {
		uc.auditDenied(ctx, actor, resource, "resource_required")
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "emergency access resource is required")
	}

	decision, err := uc.guard.Authorize(ctx, actor, accessDomain.Options{
		Roles:    uc.cfg.EligibleRoles,
		Resource: resource,
		Action:   ActionEmergencyRequest,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}

	id, err := uuid.NewV7()
	if err != nil {
		uc.auditDenied(ctx, actor, resource, "grant_id_failed")
		return nil, apperrors.Wrap(err, "failed to generate grant id")
	}
	issuedAt := uc.now().UTC()
	grant := &emergencyDomain.Grant{
		ID:         id,
		Grantee:    actor.ID,
		Resource:   resource,
		Reason:     reason,
		ApprovedBy: approvedBy,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(uc.cfg.Window),
	}

	if err := uc.store.Save(ctx, grant); err != nil {
		uc.auditDenied(ctx, actor, resource, "grant_store_failed")
		return nil, apperrors.Wrap(err, "failed to store emergency grant")
	}

	notified := true
	if err := uc.notifier.NotifyEmergencyAccess(ctx, grant); err != nil {
		notified = false
		uc.logger.Error("failed to notify data subject of emergency access",
			slog.String("grant_id", grant.ID.String()),
			slog.String("resource", resource),
			slog.Any("error", err),
		)
	}

	details := map[string]any{
		"grantId":         grant.ID.String(),
		"reason":          reason,
		"expiresAt":       grant.ExpiresAt.Format(time.RFC3339),
		"subjectNotified": notified,
	}
	if approvedBy != "" {
		details["approvedBy"] = approvedBy
	}
	uc.auditLogger.Log(ctx, &auditDomain.Entry{
		Level:    auditDomain.LevelEmergency,
		Actor:    entryActor(actor),
		Action:   auditDomain.ActionEmergencyAccess,
		Resource: resource,
		Outcome:  auditDomain.OutcomeSuccess,
		Details:  details,
	})

	return grant, nil
}

// auditDenied records a refused emergency request. Guard denials are audited
// by the guard itself and do not pass through here.
func (uc *emergencyUseCase) auditDenied(ctx context.Context, actor *accessDomain.Actor, resource, cause string) {
	uc.auditLogger.Log(ctx, &auditDomain.Entry{
		Level:    auditDomain.LevelEmergency,
		Actor:    entryActor(actor),
		Action:   auditDomain.ActionEmergencyDenied,
		Resource: resource,
		Outcome:  auditDomain.OutcomeFailure,
		Details:  map[string]any{"cause": cause},
	})
}

func entryActor(actor *accessDomain.Actor) auditDomain.Actor {
	if actor == nil {
		return auditDomain.Actor{}
	}
	return auditDomain.Actor{
		ID:        actor.ID,
		Role:      actor.Role,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	}
}
