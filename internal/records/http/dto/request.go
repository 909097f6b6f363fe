// Package dto provides data transfer objects for the records API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// CreateRecordRequest contains the content of a new PHI record.
type CreateRecordRequest struct {
	Category string `json:"category"`
	Data     any    `json:"data"`
}

// Validate checks the request fields.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Category, validation.Required, customValidation.Identifier),
		validation.Field(&r.Data, validation.NotNil),
	)
}
