package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM with a 16-byte IV.
//
// Go's GCM implementation appends the tag to the ciphertext. This type splits the
// tag off on encryption and re-attaches it on decryption so the payload can carry
// ciphertext and tag as separate fields.
//
// Security properties:
//   - 256-bit key
//   - 16-byte IV, randomly generated per encryption
//   - 16-byte authentication tag
//
// Thread safety:
//
//	The cipher is stateless and safe for concurrent use. A fresh cipher is built
//	for every payload because each payload has its own derived key.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV.
//
// Returns:
//   - ciphertext: the encrypted bytes without the tag (same length as plaintext)
//   - iv: the 16-byte IV used for this call
//   - tag: the 16-byte authentication tag
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, iv, tag []byte, err error) {
	iv = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := a.aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - a.aead.Overhead()
	return sealed[:split], iv, sealed[split:], nil
}

// Decrypt re-joins ciphertext and tag and opens them. Any tag, IV or ciphertext
// modification makes it fail without returning plaintext.
func (a *AESGCMCipher) Decrypt(ciphertext, iv, tag, aad []byte) ([]byte, error) {
	if len(iv) != a.aead.NonceSize() {
		return nil, errors.New("invalid iv size")
	}
	if len(tag) != a.aead.Overhead() {
		return nil, errors.New("invalid tag size")
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
