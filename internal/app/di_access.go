package app

import (
	"fmt"

	accessRepository "github.com/medmarket/phiguard/internal/access/repository"
	accessService "github.com/medmarket/phiguard/internal/access/service"
	accessUseCase "github.com/medmarket/phiguard/internal/access/usecase"
)

// TokenVerifier returns the JWT verifier used by the authentication middleware.
func (c *Container) TokenVerifier() accessService.TokenVerifier {
	c.components.tokenVerifierInit.Do(func() {
		c.components.tokenVerifier = accessService.NewTokenVerifier(c.config.JWTSigningKey, c.config.JWTIssuer)
	})
	return c.components.tokenVerifier
}

// RateLimiter returns the per-actor rate limiter, backed by Redis when
// REDIS_URL is set so that limits hold across replicas.
func (c *Container) RateLimiter() (accessUseCase.RateLimiter, error) {
	return resolve(c, &c.components.rateLimiterInit, "rateLimiter",
		&c.components.rateLimiter, c.initRateLimiter)
}

// LockoutStore returns the failed-attempt store.
func (c *Container) LockoutStore() (accessUseCase.LockoutStore, error) {
	return resolve(c, &c.components.lockoutInit, "lockoutStore",
		&c.components.lockout, c.initLockoutStore)
}

// AccessGuard returns the access control guard.
func (c *Container) AccessGuard() (accessUseCase.AccessGuard, error) {
	return resolve(c, &c.components.guardInit, "accessGuard",
		&c.components.guard, c.initAccessGuard)
}

func (c *Container) initRateLimiter() (accessUseCase.RateLimiter, error) {
	client, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for rate limiter: %w", err)
	}
	if client == nil {
		return accessRepository.NewMemoryRateLimiter(c.config.RateLimitRequests, c.config.RateLimitWindow), nil
	}
	return accessRepository.NewRedisRateLimiter(client, c.config.RateLimitRequests, c.config.RateLimitWindow), nil
}

func (c *Container) initLockoutStore() (accessUseCase.LockoutStore, error) {
	client, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for lockout store: %w", err)
	}
	if client == nil {
		return accessRepository.NewMemoryLockoutStore(c.config.LockoutWindow), nil
	}
	return accessRepository.NewRedisLockoutStore(client, c.config.LockoutWindow), nil
}

func (c *Container) initAccessGuard() (accessUseCase.AccessGuard, error) {
	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for access guard: %w", err)
	}
	rateLimiter, err := c.RateLimiter()
	if err != nil {
		return nil, err
	}
	lockout, err := c.LockoutStore()
	if err != nil {
		return nil, err
	}
	grants, err := c.GrantStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get grant store for access guard: %w", err)
	}
	compliance, err := c.ComplianceMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for access guard: %w", err)
	}

	return accessUseCase.NewGuard(
		accessUseCase.Config{
			SessionTimeout:     c.config.SessionTimeout,
			LockoutMaxAttempts: c.config.LockoutMaxAttempts,
			LockoutDuration:    c.config.LockoutDuration,
		},
		auditLogger,
		rateLimiter,
		lockout,
		c.Logger(),
		accessUseCase.WithGrantFinder(grants),
		accessUseCase.WithGuardMetrics(compliance),
	), nil
}
