package service

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

// PBKDF2Deriver derives payload keys with PBKDF2-HMAC-SHA512.
//
// The PBKDF2 salt is the random payload salt followed by the purpose bytes, which
// makes the derived key (and therefore the payload) specific to one purpose.
type PBKDF2Deriver struct {
	iterations int
}

// NewPBKDF2Deriver creates a deriver using PBKDF2Iterations rounds.
func NewPBKDF2Deriver() *PBKDF2Deriver {
	return &PBKDF2Deriver{iterations: cryptoDomain.PBKDF2Iterations}
}

// DeriveKey returns a 32-byte key. The caller owns the result and should zero it after use.
func (d *PBKDF2Deriver) DeriveKey(masterKey, salt []byte, purpose string) []byte {
	input := make([]byte, 0, len(salt)+len(purpose))
	input = append(input, salt...)
	input = append(input, purpose...)
	return pbkdf2.Key(masterKey, input, d.iterations, cryptoDomain.KeySize, sha512.New)
}
