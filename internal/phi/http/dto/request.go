// Package dto provides data transfer objects for the PHI detection API.
package dto

import (
	validation "github.com/jellydator/validation"
)

// ScanRequest contains free text to scan.
type ScanRequest struct {
	Text string `json:"text"`
}

// Validate checks the request fields.
func (r *ScanRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required),
	)
}

// VerifyDeIdentificationRequest contains a structured record to check.
type VerifyDeIdentificationRequest struct {
	Record map[string]any `json:"record"`
}

// Validate checks the request fields.
func (r *VerifyDeIdentificationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Record, validation.NotNil),
	)
}
