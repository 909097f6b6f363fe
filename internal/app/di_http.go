package app

import (
	"context"
	"fmt"

	"github.com/medmarket/phiguard/internal/http"
)

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	guard, err := c.AccessGuard()
	if err != nil {
		return nil, err
	}
	auditor, err := c.Auditor()
	if err != nil {
		return nil, err
	}
	phiHandler, err := c.PHIHandler()
	if err != nil {
		return nil, err
	}
	cryptoHandler, err := c.CryptoHandler()
	if err != nil {
		return nil, err
	}
	consentHandler, err := c.ConsentHandler()
	if err != nil {
		return nil, err
	}
	emergencyHandler, err := c.EmergencyHandler()
	if err != nil {
		return nil, err
	}
	recordHandler, err := c.RecordHandler()
	if err != nil {
		return nil, err
	}
	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	handlers := http.Handlers{
		Verifier:  c.TokenVerifier(),
		Guard:     guard,
		Auditor:   auditor,
		PHI:       phiHandler,
		Crypto:    cryptoHandler,
		Consent:   consentHandler,
		Emergency: emergencyHandler,
		Records:   recordHandler,
		AuditLogs: auditLogHandler,
	}
	if provider != nil {
		handlers.MeterProvider = provider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())

	redisClient, err := c.Redis()
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		server.AddReadinessCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	server.SetupRouter(c.config, handlers)
	return server, nil
}
