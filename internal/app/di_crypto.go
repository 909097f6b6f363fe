package app

import (
	"fmt"

	cryptoHttp "github.com/medmarket/phiguard/internal/crypto/http"
	cryptoService "github.com/medmarket/phiguard/internal/crypto/service"
	cryptoUseCase "github.com/medmarket/phiguard/internal/crypto/usecase"
)

// KMSService returns the KMS service used to unwrap the master key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.components.kmsServiceInit.Do(func() {
		c.components.kmsService = cryptoService.NewKMSService()
	})
	return c.components.kmsService
}

// CryptoUseCase returns the crypto engine, instrumented when metrics are enabled.
func (c *Container) CryptoUseCase() (cryptoUseCase.CryptoUseCase, error) {
	return resolve(c, &c.components.cryptoUseCaseInit, "cryptoUseCase",
		&c.components.cryptoUseCase, c.initCryptoUseCase)
}

// CryptoHandler returns the crypto HTTP handler.
func (c *Container) CryptoHandler() (*cryptoHttp.CryptoHandler, error) {
	useCase, err := c.CryptoUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get crypto use case for crypto handler: %w", err)
	}
	return cryptoHttp.NewCryptoHandler(useCase, c.Logger()), nil
}

func (c *Container) initCryptoUseCase() (cryptoUseCase.CryptoUseCase, error) {
	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for crypto use case: %w", err)
	}
	compliance, err := c.ComplianceMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for crypto use case: %w", err)
	}

	useCase := cryptoUseCase.NewCryptoUseCase(masterKey)
	return cryptoUseCase.NewCryptoUseCaseWithMetrics(useCase, compliance), nil
}
