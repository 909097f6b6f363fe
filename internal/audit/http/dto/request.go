// Package dto provides data transfer objects for the audit log API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// CorrectionRequest appends a compensating entry for an earlier request.
type CorrectionRequest struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

// Validate checks if the correction request is valid.
func (r *CorrectionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RequestID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 1000),
		),
	)
}
