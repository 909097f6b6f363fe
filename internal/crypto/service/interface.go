// Package service provides the cryptographic primitives behind PHI encryption:
// AES-256-GCM with a detached tag, PBKDF2-SHA512 key derivation and KMS unwrapping
// of the master key.
package service

import (
	"context"
)

// AEAD defines authenticated encryption that returns the tag separately from the ciphertext.
type AEAD interface {
	// Encrypt encrypts plaintext and returns the ciphertext, the random IV and the tag.
	Encrypt(plaintext, aad []byte) (ciphertext, iv, tag []byte, err error)

	// Decrypt verifies the tag and returns the plaintext.
	Decrypt(ciphertext, iv, tag, aad []byte) ([]byte, error)
}

// KeyDeriver derives a per-payload key from the master key.
type KeyDeriver interface {
	// DeriveKey returns a KeySize-byte key bound to both salt and purpose.
	DeriveKey(masterKey, salt []byte, purpose string) []byte
}

// KMSService unwraps a KMS encrypted master key.
type KMSService interface {
	// UnwrapKey decrypts a base64 KMS ciphertext with the keeper at keyURI.
	UnwrapKey(ctx context.Context, keyURI, wrappedKey string) ([]byte, error)

	// WrapKey encrypts key material with the keeper at keyURI and returns base64.
	WrapKey(ctx context.Context, keyURI string, key []byte) (string, error)
}
