// Package http provides the consent management API.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	"github.com/medmarket/phiguard/internal/consent/http/dto"
	consentUseCase "github.com/medmarket/phiguard/internal/consent/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// ConsentHandler handles consent management requests. Patients manage their
// own consents; administrators manage any subject's.
type ConsentHandler struct {
	consentUseCase consentUseCase.ConsentUseCase
	logger         *slog.Logger
	now            func() time.Time
}

// NewConsentHandler creates a new consent handler.
func NewConsentHandler(consentUseCase consentUseCase.ConsentUseCase, logger *slog.Logger) *ConsentHandler {
	return &ConsentHandler{
		consentUseCase: consentUseCase,
		logger:         logger,
		now:            time.Now,
	}
}

// SubjectResource names the audited resource of a consent route.
func SubjectResource(c *gin.Context) string {
	return "subjects/" + c.Param("subject_id") + "/consents/" + c.Param("purpose")
}

// Grant creates or renews consent.
// POST /v1/consents
func (h *ConsentHandler) Grant(c *gin.Context) (*auditHttp.Response, error) {
	var req dto.GrantConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	actor, err := subjectManager(c, req.SubjectID)
	if err != nil {
		return nil, err
	}

	record, err := h.consentUseCase.Grant(c.Request.Context(), actor.ID, consentUseCase.GrantInput{
		SubjectID: req.SubjectID,
		Grantee:   req.Grantee,
		Purpose:   req.Purpose,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status: http.StatusCreated,
		Body:   dto.MapRecordToResponse(record, h.now()),
		Details: map[string]any{
			"subjectId": req.SubjectID,
			"purpose":   req.Purpose,
			"grantee":   req.Grantee,
		},
	}, nil
}

// Get returns a consent record and its history.
// GET /v1/consents/:subject_id/:purpose
func (h *ConsentHandler) Get(c *gin.Context) (*auditHttp.Response, error) {
	subjectID, purpose := c.Param("subject_id"), c.Param("purpose")
	if _, err := subjectManager(c, subjectID); err != nil {
		return nil, err
	}

	record, err := h.consentUseCase.Get(c.Request.Context(), subjectID, purpose)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status: http.StatusOK,
		Body:   dto.MapRecordToResponse(record, h.now()),
	}, nil
}

// Revoke withdraws consent. The record and its history are kept.
// DELETE /v1/consents/:subject_id/:purpose
func (h *ConsentHandler) Revoke(c *gin.Context) (*auditHttp.Response, error) {
	subjectID, purpose := c.Param("subject_id"), c.Param("purpose")
	actor, err := subjectManager(c, subjectID)
	if err != nil {
		return nil, err
	}

	record, err := h.consentUseCase.Revoke(c.Request.Context(), actor.ID, subjectID, purpose)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    dto.MapRecordToResponse(record, h.now()),
		Details: map[string]any{"subjectId": subjectID, "purpose": purpose},
	}, nil
}

// Verify reports whether the caller, or the requester named in the query,
// holds consent for the purpose.
// GET /v1/consents/:subject_id/:purpose/verify?requester=...
func (h *ConsentHandler) Verify(c *gin.Context) (*auditHttp.Response, error) {
	actor, ok := accessHttp.GetActor(c.Request.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	requester := c.Query("requester")
	if requester == "" {
		requester = actor.ID
	}
	subjectID, purpose := c.Param("subject_id"), c.Param("purpose")

	consented := h.consentUseCase.VerifyConsent(c.Request.Context(), requester, subjectID, purpose)

	return &auditHttp.Response{
		Status: http.StatusOK,
		Body: dto.VerifyConsentResponse{
			SubjectID: subjectID,
			Purpose:   purpose,
			Requester: requester,
			Consented: consented,
		},
		Details: map[string]any{"requester": requester, "consented": consented},
	}, nil
}

// subjectManager returns the caller when it may manage subjectID's consents.
func subjectManager(c *gin.Context, subjectID string) (*accessDomain.Actor, error) {
	actor, ok := accessHttp.GetActor(c.Request.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	if actor.Role == accessDomain.RoleAdmin || actor.ID == subjectID {
		return actor, nil
	}
	return nil, apperrors.Wrap(apperrors.ErrForbidden, "only the data subject may manage its consents")
}
