// Package http provides the PHI detection API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
	"github.com/medmarket/phiguard/internal/phi/http/dto"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// Audit actions of the PHI API.
const (
	ActionScan                   = "PHI_SCAN"
	ActionVerifyDeIdentification = "PHI_VERIFY_DEIDENTIFICATION"
)

// Detector is the subset of the PHI detector used by the API.
type Detector interface {
	Scan(text string) phiDomain.ScanResult
	VerifyDeIdentification(record map[string]any) phiDomain.DeIdentificationReport
}

// PHIHandler handles PHI detection requests. Submitted content is never echoed
// back or written to the audit trail; only the detected categories are.
type PHIHandler struct {
	detector Detector
	logger   *slog.Logger
}

// NewPHIHandler creates a new PHI handler.
func NewPHIHandler(detector Detector, logger *slog.Logger) *PHIHandler {
	return &PHIHandler{
		detector: detector,
		logger:   logger,
	}
}

// Resource names the audited resource of the PHI routes.
func Resource(*gin.Context) string {
	return "phi"
}

// Scan reports the PHI categories found in free text.
// POST /v1/phi/scan
func (h *PHIHandler) Scan(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	result := h.detector.Scan(req.Text)
	if result.Types == nil {
		result.Types = []string{}
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    result,
		Details: map[string]any{"hasPHI": result.HasPHI, "phiTypes": result.Types},
	}, nil
}

// VerifyDeIdentification reports the fields of a record that still contain PHI.
// POST /v1/phi/verify-deidentification
func (h *PHIHandler) VerifyDeIdentification(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.VerifyDeIdentificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	report := h.detector.VerifyDeIdentification(req.Record)
	if report.Issues == nil {
		report.Issues = []phiDomain.Issue{}
	}

	return &auditHttp.Response{
		Status: http.StatusOK,
		Body:   report,
		Details: map[string]any{
			"isDeIdentified": report.IsDeIdentified,
			"issueCount":     len(report.Issues),
		},
	}, nil
}
