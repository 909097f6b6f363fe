package app

import (
	"fmt"

	emergencyHttp "github.com/medmarket/phiguard/internal/emergency/http"
	emergencyRepository "github.com/medmarket/phiguard/internal/emergency/repository"
	emergencyService "github.com/medmarket/phiguard/internal/emergency/service"
	emergencyUseCase "github.com/medmarket/phiguard/internal/emergency/usecase"
)

// GrantStore returns the emergency grant store. Grants live in Redis when
// REDIS_URL is set and in process memory otherwise.
func (c *Container) GrantStore() (emergencyUseCase.GrantStore, error) {
	return resolve(c, &c.components.grantStoreInit, "grantStore",
		&c.components.grantStore, c.initGrantStore)
}

// EmergencyNotifier returns the subject notifier. Notifications go to Kafka
// when KAFKA_EMERGENCY_TOPIC is set and to the application log otherwise.
func (c *Container) EmergencyNotifier() (emergencyUseCase.Notifier, error) {
	return resolve(c, &c.components.notifierInit, "emergencyNotifier",
		&c.components.notifier, c.initEmergencyNotifier)
}

// EmergencyUseCase returns the emergency access handler.
func (c *Container) EmergencyUseCase() (emergencyUseCase.EmergencyAccessHandler, error) {
	return resolve(c, &c.components.emergencyInit, "emergencyUseCase",
		&c.components.emergency, c.initEmergencyUseCase)
}

// EmergencyHandler returns the emergency access HTTP handler.
func (c *Container) EmergencyHandler() (*emergencyHttp.EmergencyHandler, error) {
	useCase, err := c.EmergencyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get emergency use case for emergency handler: %w", err)
	}
	return emergencyHttp.NewEmergencyHandler(useCase, c.Logger()), nil
}

func (c *Container) initGrantStore() (emergencyUseCase.GrantStore, error) {
	client, err := c.Redis()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis for grant store: %w", err)
	}
	if client == nil {
		return emergencyRepository.NewMemoryGrantStore(), nil
	}
	return emergencyRepository.NewRedisGrantStore(client), nil
}

func (c *Container) initEmergencyNotifier() (emergencyUseCase.Notifier, error) {
	if c.config.KafkaEmergencyTopic == "" {
		return emergencyService.NewLogNotifier(c.Logger()), nil
	}
	client, err := c.KafkaClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get kafka client for emergency notifier: %w", err)
	}
	return emergencyService.NewKafkaNotifier(client, c.config.KafkaEmergencyTopic), nil
}

func (c *Container) initEmergencyUseCase() (emergencyUseCase.EmergencyAccessHandler, error) {
	guard, err := c.AccessGuard()
	if err != nil {
		return nil, fmt.Errorf("failed to get access guard for emergency use case: %w", err)
	}
	store, err := c.GrantStore()
	if err != nil {
		return nil, err
	}
	notifier, err := c.EmergencyNotifier()
	if err != nil {
		return nil, err
	}
	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for emergency use case: %w", err)
	}

	return emergencyUseCase.NewEmergencyAccessHandler(
		emergencyUseCase.Config{
			Window:        c.config.EmergencyAccessWindow,
			EligibleRoles: emergencyUseCase.DefaultEligibleRoles,
		},
		guard,
		store,
		notifier,
		auditLogger,
		c.Logger(),
	), nil
}
