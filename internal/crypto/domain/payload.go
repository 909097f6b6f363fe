package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// EncryptedPayload is the wire representation of encrypted PHI.
//
// All binary fields are hex encoded. A payload can only be decrypted with the same
// master key and the same purpose that were used to produce it: the purpose is
// mixed into the key derivation, so a payload encrypted for "treatment" cannot be
// opened as "research".
//
// Payloads are immutable once created. Re-encryption produces a new payload.
//
// Fields:
//   - Version: payload format version, see PayloadVersion
//   - IV: 16-byte AES-GCM initialization vector
//   - Salt: 64-byte PBKDF2 salt
//   - Ciphertext: encrypted bytes without the authentication tag
//   - AuthTag: 16-byte GCM authentication tag
//   - Purpose: purpose label bound into the derived key
//   - Timestamp: encryption time (UTC)
type EncryptedPayload struct {
	Version    string    `json:"version"`
	IV         string    `json:"iv"`
	Salt       string    `json:"salt"`
	Ciphertext string    `json:"encryptedData"`
	AuthTag    string    `json:"authTag"`
	Purpose    string    `json:"purpose"`
	Timestamp  time.Time `json:"timestamp"`
}

// Validate checks field presence and encoded sizes. It does not authenticate the payload.
func (p *EncryptedPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Version, validation.Required),
		validation.Field(&p.IV, validation.Required, customValidation.HexBytes(IVSize)),
		validation.Field(&p.Salt, validation.Required, customValidation.HexBytes(SaltSize)),
		validation.Field(&p.Ciphertext, customValidation.Hex),
		validation.Field(&p.AuthTag, validation.Required, customValidation.HexBytes(TagSize)),
		validation.Field(&p.Purpose, validation.Required),
	)
}
