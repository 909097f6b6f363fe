package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	"github.com/medmarket/phiguard/internal/access/repository"
	"github.com/medmarket/phiguard/internal/access/usecase/mocks"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditMocks "github.com/medmarket/phiguard/internal/audit/usecase/mocks"
	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
	metricsMocks "github.com/medmarket/phiguard/internal/metrics/mocks"
)

var guardNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type guardFixture struct {
	guard   *Guard
	audit   *auditMocks.MockAuditLogger
	limiter *mocks.MockRateLimiter
	lockout *repository.MemoryLockoutStore
	grants  *mocks.MockGrantFinder
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	f := &guardFixture{
		audit:   &auditMocks.MockAuditLogger{},
		limiter: &mocks.MockRateLimiter{},
		lockout: repository.NewMemoryLockoutStore(15 * time.Minute),
		grants:  &mocks.MockGrantFinder{},
	}
	f.audit.On("Log", mock.Anything, mock.Anything).Return()
	f.guard = NewGuard(
		Config{SessionTimeout: 30 * time.Minute, LockoutMaxAttempts: 3, LockoutDuration: 30 * time.Minute},
		f.audit,
		f.limiter,
		f.lockout,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithGrantFinder(f.grants),
		WithGuardClock(func() time.Time { return guardNow }),
	)
	return f
}

func physician() *accessDomain.Actor {
	return &accessDomain.Actor{
		ID:          "dr-1",
		Role:        accessDomain.RolePhysician,
		Permissions: []string{"records:read"},
		MFAVerified: true,
		IssuedAt:    guardNow.Add(-5 * time.Minute),
	}
}

func (f *guardFixture) deniedEntries() []*auditDomain.Entry {
	var out []*auditDomain.Entry
	for _, call := range f.audit.Calls {
		out = append(out, call.Arguments.Get(1).(*auditDomain.Entry))
	}
	return out
}

func TestGuard_Allows(t *testing.T) {
	f := newGuardFixture(t)
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(true, nil)

	decision, err := f.guard.Authorize(context.Background(), physician(), accessDomain.Options{
		Roles:       []string{accessDomain.RolePhysician, accessDomain.RoleNurse},
		Permissions: []string{"records:read"},
		RequireMFA:  true,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, accessDomain.ReasonAllowed, decision.ReasonCode)
	assert.Empty(t, f.audit.Calls)
}

func TestGuard_DenialReasons(t *testing.T) {
	tests := []struct {
		name   string
		actor  func() *accessDomain.Actor
		opts   accessDomain.Options
		reason string
		step   string
	}{
		{
			name:   "no actor",
			actor:  func() *accessDomain.Actor { return nil },
			reason: accessDomain.ReasonAuthRequired,
		},
		{
			name: "session older than timeout",
			actor: func() *accessDomain.Actor {
				a := physician()
				a.IssuedAt = guardNow.Add(-31 * time.Minute)
				return a
			},
			reason: accessDomain.ReasonSessionExpired,
		},
		{
			name: "missing issuance time",
			actor: func() *accessDomain.Actor {
				a := physician()
				a.IssuedAt = time.Time{}
				return a
			},
			reason: accessDomain.ReasonSessionExpired,
		},
		{
			name:   "wrong role",
			actor:  physician,
			opts:   accessDomain.Options{Roles: []string{accessDomain.RoleAdmin}},
			reason: accessDomain.ReasonInsufficientRole,
		},
		{
			name:   "missing permission",
			actor:  physician,
			opts:   accessDomain.Options{Permissions: []string{"records:read", "records:delete"}},
			reason: accessDomain.ReasonInsufficientPermissions,
		},
		{
			name: "mfa required",
			actor: func() *accessDomain.Actor {
				a := physician()
				a.MFAVerified = false
				return a
			},
			opts:   accessDomain.Options{RequireMFA: true},
			reason: accessDomain.ReasonMFARequired,
			step:   accessDomain.StepMFA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t)

			decision, err := f.guard.Authorize(context.Background(), tt.actor(), tt.opts)
			require.NoError(t, err)
			assert.False(t, decision.Allowed)
			assert.Equal(t, tt.reason, decision.ReasonCode)
			assert.Equal(t, tt.step, decision.RequiredStep)

			entries := f.deniedEntries()
			require.Len(t, entries, 1)
			assert.Equal(t, auditDomain.ActionAccessDenied, entries[0].Action)
			assert.Equal(t, auditDomain.OutcomeDenied, entries[0].Outcome)
			assert.Equal(t, tt.reason, entries[0].Details["reasonCode"])

			// Checks after the failing one are never evaluated.
			f.limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
		})
	}
}

func TestGuard_SessionBoundary(t *testing.T) {
	f := newGuardFixture(t)
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(true, nil)

	fresh := physician()
	fresh.IssuedAt = guardNow.Add(-29 * time.Minute)
	decision, err := f.guard.Authorize(context.Background(), fresh, accessDomain.Options{})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	stale := physician()
	stale.IssuedAt = guardNow.Add(-31 * time.Minute)
	decision, err = f.guard.Authorize(context.Background(), stale, accessDomain.Options{})
	require.NoError(t, err)
	assert.Equal(t, accessDomain.ReasonSessionExpired, decision.ReasonCode)
}

func TestGuard_RoleCheckPrecedesRateLimit(t *testing.T) {
	f := newGuardFixture(t)
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(false, nil)

	decision, err := f.guard.Authorize(context.Background(), physician(), accessDomain.Options{
		Roles: []string{accessDomain.RoleAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, accessDomain.ReasonInsufficientRole, decision.ReasonCode)
	assert.Len(t, f.deniedEntries(), 1)
	f.limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
}

func TestGuard_RateLimitExceeded(t *testing.T) {
	f := newGuardFixture(t)
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(false, nil)

	decision, err := f.guard.Authorize(context.Background(), physician(), accessDomain.Options{})
	require.NoError(t, err)
	assert.Equal(t, accessDomain.ReasonRateLimitExceeded, decision.ReasonCode)
	assert.Len(t, f.deniedEntries(), 1)

	// Throttling does not count toward lockout.
	n, _ := f.lockout.RecordFailure(context.Background(), "dr-1")
	assert.Equal(t, 1, n)
}

func TestGuard_Lockout(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	opts := accessDomain.Options{Roles: []string{accessDomain.RoleAdmin}}

	for range 3 {
		decision, err := f.guard.Authorize(ctx, physician(), opts)
		require.NoError(t, err)
		assert.Equal(t, accessDomain.ReasonInsufficientRole, decision.ReasonCode)
	}
	assert.Equal(t, true, f.deniedEntries()[2].Details["lockoutTriggered"])

	// Even a request that would otherwise pass is denied while locked.
	decision, err := f.guard.Authorize(ctx, physician(), accessDomain.Options{})
	require.NoError(t, err)
	assert.Equal(t, accessDomain.ReasonAccountLocked, decision.ReasonCode)
	assert.Len(t, f.deniedEntries(), 4)

	require.NoError(t, f.guard.ClearFailures(ctx, "dr-1"))
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(true, nil)
	decision, err = f.guard.Authorize(ctx, physician(), accessDomain.Options{})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGuard_MFAStepUpDoesNotLock(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(true, nil)

	noMFA := physician()
	noMFA.MFAVerified = false
	for range 5 {
		decision, err := f.guard.Authorize(ctx, noMFA, accessDomain.Options{RequireMFA: true})
		require.NoError(t, err)
		assert.Equal(t, accessDomain.ReasonMFARequired, decision.ReasonCode)
		assert.Equal(t, accessDomain.StepMFA, decision.RequiredStep)
	}

	decision, err := f.guard.Authorize(ctx, noMFA, accessDomain.Options{})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	locked, err := f.lockout.IsLocked(ctx, "dr-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGuard_SessionExpiryDoesNotLock(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	stale := physician()
	stale.IssuedAt = guardNow.Add(-2 * time.Hour)
	for range 5 {
		decision, err := f.guard.Authorize(ctx, stale, accessDomain.Options{})
		require.NoError(t, err)
		assert.Equal(t, accessDomain.ReasonSessionExpired, decision.ReasonCode)
	}

	locked, err := f.lockout.IsLocked(ctx, "dr-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGuard_RecordAuthFailureLocks(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, f.guard.RecordAuthFailure(ctx, "dr-1"))
	}
	locked, err := f.lockout.IsLocked(ctx, "dr-1")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestGuard_EmergencyGrant(t *testing.T) {
	issued := guardNow.Add(-29 * time.Minute)
	active := &emergencyDomain.Grant{
		Grantee:   "dr-1",
		Resource:  "subjects/p-1",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(emergencyDomain.DefaultWindow),
	}
	expiredIssued := guardNow.Add(-31 * time.Minute)
	expired := &emergencyDomain.Grant{
		Grantee:   "dr-1",
		Resource:  "subjects/p-1",
		IssuedAt:  expiredIssued,
		ExpiresAt: expiredIssued.Add(emergencyDomain.DefaultWindow),
	}

	tests := []struct {
		name    string
		grant   *emergencyDomain.Grant
		allowed bool
	}{
		{"usable at +29 minutes", active, true},
		{"rejected at +31 minutes", expired, false},
		{"no grant", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t)
			f.limiter.On("Allow", mock.Anything, "dr-1").Return(true, nil)
			if tt.grant == nil {
				f.grants.On("Find", mock.Anything, "dr-1", "subjects/p-1").Return(nil, nil)
			} else {
				f.grants.On("Find", mock.Anything, "dr-1", "subjects/p-1").Return(tt.grant, nil)
			}

			decision, err := f.guard.Authorize(context.Background(), physician(), accessDomain.Options{
				Emergency: true,
				Resource:  "subjects/p-1",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.Equal(t, accessDomain.ReasonEmergencyAccessInvalid, decision.ReasonCode)
			}
		})
	}
}

func TestGuard_StoreErrorIsAuditedOnce(t *testing.T) {
	f := newGuardFixture(t)
	f.limiter.On("Allow", mock.Anything, "dr-1").Return(false, assert.AnError)

	decision, err := f.guard.Authorize(context.Background(), physician(), accessDomain.Options{Resource: "r"})
	assert.Nil(t, decision)
	assert.ErrorIs(t, err, assert.AnError)

	entries := f.deniedEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, auditDomain.ActionAccessGuardError, entries[0].Action)
	assert.Equal(t, auditDomain.OutcomeFailure, entries[0].Outcome)
}

func TestGuard_LockoutStoreError(t *testing.T) {
	audit := &auditMocks.MockAuditLogger{}
	audit.On("Log", mock.Anything, mock.Anything).Return()
	lockout := &mocks.MockLockoutStore{}
	lockout.On("IsLocked", mock.Anything, "dr-1").Return(false, assert.AnError)

	guard := NewGuard(Config{SessionTimeout: time.Hour}, audit, &mocks.MockRateLimiter{}, lockout,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := guard.Authorize(context.Background(), physician(), accessDomain.Options{})
	assert.ErrorIs(t, err, assert.AnError)
	audit.AssertNumberOfCalls(t, "Log", 1)
}

func TestGuard_RecordsMetrics(t *testing.T) {
	f := newGuardFixture(t)
	m := &metricsMocks.MockComplianceMetrics{}
	m.On("RecordAccessDecision", mock.Anything, accessDomain.ReasonAuthRequired).Return()
	WithGuardMetrics(m)(f.guard)

	_, err := f.guard.Authorize(context.Background(), nil, accessDomain.Options{})
	require.NoError(t, err)
	m.AssertExpectations(t)
}
