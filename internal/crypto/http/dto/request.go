// Package dto provides data transfer objects for the crypto API.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// EncryptRequest contains plaintext and the purpose it is encrypted for.
type EncryptRequest struct {
	Data    any    `json:"data"`
	Purpose string `json:"purpose"`
}

// Validate checks the request fields.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.NotNil),
		validation.Field(&r.Purpose, validation.Required, customValidation.Purpose),
	)
}

// DecryptRequest contains a payload produced by the encrypt endpoint.
type DecryptRequest struct {
	Payload *cryptoDomain.EncryptedPayload `json:"payload"`
}

// Validate checks the request fields, including the payload encoding.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Payload, validation.Required),
	)
}
