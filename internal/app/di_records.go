package app

import (
	"fmt"

	recordsHttp "github.com/medmarket/phiguard/internal/records/http"
	recordsRepository "github.com/medmarket/phiguard/internal/records/repository"
	recordsUseCase "github.com/medmarket/phiguard/internal/records/usecase"
)

// RecordRepository returns the PHI record repository for the configured driver.
func (c *Container) RecordRepository() (recordsUseCase.RecordRepository, error) {
	return resolve(c, &c.components.recordRepoInit, "recordRepository",
		&c.components.recordRepo, c.initRecordRepository)
}

// RecordUseCase returns the PHI record use case.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	return resolve(c, &c.components.recordUseCaseInit, "recordUseCase",
		&c.components.recordUseCase, c.initRecordUseCase)
}

// RecordHandler returns the PHI record HTTP handler.
func (c *Container) RecordHandler() (*recordsHttp.RecordHandler, error) {
	useCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
	}
	return recordsHttp.NewRecordHandler(useCase, c.Logger()), nil
}

func (c *Container) initRecordRepository() (recordsUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return recordsRepository.NewMySQLRecordRepository(db), nil
	case "postgres":
		return recordsRepository.NewPostgreSQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initRecordUseCase() (recordsUseCase.RecordUseCase, error) {
	repo, err := c.RecordRepository()
	if err != nil {
		return nil, err
	}
	crypto, err := c.CryptoUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto use case for record use case: %w", err)
	}
	detector, err := c.PHIDetector()
	if err != nil {
		return nil, err
	}
	consent, err := c.ConsentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent use case for record use case: %w", err)
	}
	compliance, err := c.ComplianceMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for record use case: %w", err)
	}

	useCase := recordsUseCase.NewRecordUseCase(repo, crypto, detector, consent, c.Logger())
	return recordsUseCase.NewRecordUseCaseWithMetrics(useCase, compliance), nil
}
