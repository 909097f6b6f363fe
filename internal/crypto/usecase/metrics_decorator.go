package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	"github.com/medmarket/phiguard/internal/metrics"
)

// cryptoUseCaseWithMetrics decorates CryptoUseCase with metrics instrumentation.
type cryptoUseCaseWithMetrics struct {
	next    CryptoUseCase
	metrics metrics.ComplianceMetrics
}

// NewCryptoUseCaseWithMetrics wraps a CryptoUseCase with metrics recording.
func NewCryptoUseCaseWithMetrics(useCase CryptoUseCase, m metrics.ComplianceMetrics) CryptoUseCase {
	return &cryptoUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *cryptoUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	c.metrics.RecordOperation(ctx, "crypto", operation, status)
	c.metrics.RecordDuration(ctx, "crypto", operation, time.Since(start), status)
}

// Encrypt records metrics for encryption operations.
func (c *cryptoUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	plaintext any,
	purpose string,
) (*cryptoDomain.EncryptedPayload, error) {
	start := time.Now()
	payload, err := c.next.Encrypt(ctx, plaintext, purpose)
	c.record(ctx, "encrypt", start, err)
	return payload, err
}

// Decrypt records metrics for decryption operations.
func (c *cryptoUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	payload *cryptoDomain.EncryptedPayload,
) (any, error) {
	start := time.Now()
	value, err := c.next.Decrypt(ctx, payload)
	c.record(ctx, "decrypt", start, err)
	return value, err
}

// DecryptBytes records metrics under the same "decrypt" operation.
func (c *cryptoUseCaseWithMetrics) DecryptBytes(
	ctx context.Context,
	payload *cryptoDomain.EncryptedPayload,
) ([]byte, error) {
	start := time.Now()
	value, err := c.next.DecryptBytes(ctx, payload)
	c.record(ctx, "decrypt", start, err)
	return value, err
}

// Hash is not instrumented.
func (c *cryptoUseCaseWithMetrics) Hash(data []byte) string {
	return c.next.Hash(data)
}
