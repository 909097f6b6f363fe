// Package dto provides data transfer objects for the emergency access API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// EmergencyAccessRequest asks for a break-the-glass grant on a resource.
type EmergencyAccessRequest struct {
	Resource   string `json:"resource"`
	Reason     string `json:"reason"`
	ApprovedBy string `json:"approved_by,omitempty"`
}

// Validate checks if the request is valid. A blank reason is reported by the
// use case so the error carries the emergency specific message.
func (r *EmergencyAccessRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Resource,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Reason, validation.Length(0, 1000)),
		validation.Field(&r.ApprovedBy, customValidation.Identifier),
	)
}
