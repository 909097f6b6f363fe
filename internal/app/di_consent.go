package app

import (
	"fmt"

	consentHttp "github.com/medmarket/phiguard/internal/consent/http"
	consentRepository "github.com/medmarket/phiguard/internal/consent/repository"
	consentUseCase "github.com/medmarket/phiguard/internal/consent/usecase"
)

// ConsentRepository returns the consent repository for the configured driver.
func (c *Container) ConsentRepository() (consentUseCase.ConsentRepository, error) {
	return resolve(c, &c.components.consentRepoInit, "consentRepository",
		&c.components.consentRepo, c.initConsentRepository)
}

// ConsentUseCase returns the consent verifier.
func (c *Container) ConsentUseCase() (consentUseCase.ConsentUseCase, error) {
	return resolve(c, &c.components.consentUseCaseInit, "consentUseCase",
		&c.components.consentUseCase, c.initConsentUseCase)
}

// ConsentHandler returns the consent HTTP handler.
func (c *Container) ConsentHandler() (*consentHttp.ConsentHandler, error) {
	useCase, err := c.ConsentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent use case for consent handler: %w", err)
	}
	return consentHttp.NewConsentHandler(useCase, c.Logger()), nil
}

func (c *Container) initConsentRepository() (consentUseCase.ConsentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for consent repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return consentRepository.NewMySQLConsentRepository(db), nil
	case "postgres":
		return consentRepository.NewPostgreSQLConsentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initConsentUseCase() (consentUseCase.ConsentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for consent use case: %w", err)
	}
	repo, err := c.ConsentRepository()
	if err != nil {
		return nil, err
	}
	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for consent use case: %w", err)
	}

	return consentUseCase.NewConsentUseCase(txManager, repo, auditLogger, c.Logger()), nil
}
