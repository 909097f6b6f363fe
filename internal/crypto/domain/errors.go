package domain

import (
	"github.com/medmarket/phiguard/internal/errors"
)

// Cryptographic operation errors.
//
// Messages never include key material, salts or plaintext. The specific cause of
// a decryption failure (wrong key, wrong purpose, tampered ciphertext or tag) is
// deliberately not distinguished.
var (
	// ErrEncryption indicates encryption could not be performed.
	//
	// Typical causes are a missing master key, a master key that is not exactly
	// KeySize bytes, a plaintext that cannot be serialized, or an exhausted
	// random source.
	//
	// HTTP Status: 500 Internal Server Error
	ErrEncryption = errors.New("encryption failed")

	// ErrDecryption indicates a payload could not be decrypted.
	//
	// This covers authentication tag mismatches, a different master key or purpose
	// than the one used at encryption time, and malformed hex fields.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrDecryption = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrUnsupportedPayloadVersion indicates the payload version has no decrypter.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrUnsupportedPayloadVersion = errors.Wrap(ErrDecryption, "unsupported payload version")

	// ErrInvalidMasterKey indicates the configured master key cannot be used.
	ErrInvalidMasterKey = errors.Wrap(ErrEncryption, "master key must be 32 bytes")
)
