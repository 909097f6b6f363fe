// Package usecase implements the CryptoEngine: purpose-bound encryption of PHI,
// payload decryption with version gating, and content hashing.
package usecase

import (
	"context"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

// CryptoUseCase encrypts and decrypts PHI.
type CryptoUseCase interface {
	// Encrypt serializes plaintext and encrypts it for purpose. Strings and byte
	// slices are encrypted as-is, any other value is JSON encoded first.
	Encrypt(ctx context.Context, plaintext any, purpose string) (*cryptoDomain.EncryptedPayload, error)

	// Decrypt opens a payload and returns the JSON-decoded value, or the raw string
	// when the plaintext is not JSON.
	Decrypt(ctx context.Context, payload *cryptoDomain.EncryptedPayload) (any, error)

	// DecryptBytes opens a payload and returns the raw plaintext bytes.
	DecryptBytes(ctx context.Context, payload *cryptoDomain.EncryptedPayload) ([]byte, error)

	// Hash returns the hex SHA-512 digest of data.
	Hash(data []byte) string
}

// LegacyDecrypter opens payloads written with an older format version.
type LegacyDecrypter interface {
	Decrypt(ctx context.Context, payload *cryptoDomain.EncryptedPayload) ([]byte, error)
}
