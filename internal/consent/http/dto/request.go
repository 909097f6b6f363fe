// Package dto provides data transfer objects for the consent API.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// GrantConsentRequest grants or renews consent for one purpose.
type GrantConsentRequest struct {
	SubjectID string     `json:"subject_id"`
	Grantee   string     `json:"grantee"`
	Purpose   string     `json:"purpose"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate checks if the grant request is valid.
func (r *GrantConsentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SubjectID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Identifier,
		),
		validation.Field(&r.Purpose,
			validation.Required,
			customValidation.Purpose,
		),
		validation.Field(&r.Grantee,
			validation.Required,
			customValidation.NoWhitespace,
		),
	)
}
