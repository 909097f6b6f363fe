// Package http provides the emergency access API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	"github.com/medmarket/phiguard/internal/emergency/http/dto"
	emergencyUseCase "github.com/medmarket/phiguard/internal/emergency/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// EmergencyHandler handles break-the-glass requests.
type EmergencyHandler struct {
	emergencyAccess emergencyUseCase.EmergencyAccessHandler
	logger          *slog.Logger
}

// NewEmergencyHandler creates a new emergency access handler.
func NewEmergencyHandler(
	emergencyAccess emergencyUseCase.EmergencyAccessHandler,
	logger *slog.Logger,
) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyAccess: emergencyAccess,
		logger:          logger,
	}
}

// Grant issues an emergency grant to the caller.
// POST /v1/emergency-access
func (h *EmergencyHandler) Grant(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.EmergencyAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	actor, _ := accessHttp.GetActor(c.Request.Context())
	grant, err := h.emergencyAccess.GrantEmergencyAccess(
		c.Request.Context(), actor, req.Resource, req.Reason, req.ApprovedBy,
	)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusCreated,
		Body:    dto.MapGrantToResponse(grant),
		Details: map[string]any{"grantId": grant.ID.String()},
	}, nil
}

// GrantResource names the audited resource of an emergency request.
func GrantResource(*gin.Context) string {
	return "emergency-access"
}
