package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/audit/http/dto"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	"github.com/medmarket/phiguard/internal/httputil"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// AuditLogHandler serves the audit log API.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	actor           ActorResolver
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler.
func NewAuditLogHandler(
	auditLogUseCase auditUseCase.AuditLogUseCase,
	actor ActorResolver,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		actor:           actor,
		logger:          logger,
	}
}

// List returns audit entries newest first.
// GET /v1/audit-logs?offset=0&limit=50&from=<RFC3339>&to=<RFC3339>&actor_id=...&action=...
func (h *AuditLogHandler) List(c *gin.Context) (*Response, error) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		return nil, err
	}
	from, to, err := httputil.ParseTimeRange(c)
	if err != nil {
		return nil, err
	}

	entries, err := h.auditLogUseCase.List(c.Request.Context(), auditDomain.ListFilter{
		From:    from,
		To:      to,
		ActorID: c.Query("actor_id"),
		Action:  c.Query("action"),
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Status:  http.StatusOK,
		Body:    dto.MapEntriesToListResponse(entries),
		Details: map[string]any{"count": len(entries)},
	}, nil
}

// Correct appends a compensating entry referencing an earlier request.
// POST /v1/audit-logs/corrections
func (h *AuditLogHandler) Correct(c *gin.Context) (*Response, error) {
	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	if err := h.auditLogUseCase.Correct(c.Request.Context(), req.RequestID, h.actor(c), req.Reason); err != nil {
		return nil, err
	}

	return &Response{
		Status:  http.StatusCreated,
		Details: map[string]any{"correctsRequestId": req.RequestID},
	}, nil
}
