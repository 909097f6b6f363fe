package domain

import (
	"context"
	"encoding/hex"
)

// MasterKey holds the 32-byte root key every per-payload key is derived from.
//
// The key is loaded once at startup, either from the ENCRYPTION_KEY environment
// variable (64 hex characters) or by unwrapping a KMS ciphertext. It must be zeroed
// with Close when the process shuts down.
type MasterKey struct {
	Key []byte
}

// ParseMasterKey decodes a hex encoded master key.
//
// Returns ErrInvalidMasterKey if the value is not hex or does not decode to exactly
// KeySize bytes. The error never echoes the input.
func ParseMasterKey(hexKey string) (*MasterKey, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		Zero(key)
		return nil, ErrInvalidMasterKey
	}
	return &MasterKey{Key: key}, nil
}

// Valid reports whether the key can be used for encryption.
func (m *MasterKey) Valid() bool {
	return m != nil && len(m.Key) == KeySize
}

// Close zeroes the key material.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
	m.Key = nil
}

// Zero overwrites b with zeros. Callers zero derived keys and decrypted
// master key bytes as soon as they are done with them.
func Zero(b []byte) {
	clear(b)
}

// KMSKeeper is the subset of a KMS client used to unwrap the master key.
// *secrets.Keeper from gocloud.dev satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
