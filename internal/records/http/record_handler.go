// Package http provides the encrypted PHI records API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	"github.com/medmarket/phiguard/internal/httputil"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
	"github.com/medmarket/phiguard/internal/records/http/dto"
	recordsUseCase "github.com/medmarket/phiguard/internal/records/usecase"
	customValidation "github.com/medmarket/phiguard/internal/validation"
)

// Request and response headers of the records API.
const (
	PurposeHeader            = "X-Access-Purpose"
	DeleteConfirmationHeader = "X-Delete-Confirmation"
	DownloadPurposeHeader    = "X-Download-Purpose"

	deleteConfirmed = "confirmed"
)

// RecordHandler handles encrypted record requests.
type RecordHandler struct {
	recordUseCase recordsUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(recordUseCase recordsUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// SubjectResource names the audited resource of a records route. It is also the
// resource emergency grants are issued for.
func SubjectResource(c *gin.Context) string {
	return "subjects/" + c.Param("subject_id") + "/records"
}

// Create stores a new encrypted record.
// POST /v1/subjects/:subject_id/records
func (h *RecordHandler) Create(c *gin.Context) (*auditHttp.Response, error) {
	actor, ok := accessHttp.GetActor(c.Request.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), actor.ID, recordsUseCase.CreateInput{
		SubjectID: c.Param("subject_id"),
		Category:  req.Category,
		Data:      req.Data,
	})
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status: http.StatusCreated,
		Body:   dto.MapRecordToResponse(record),
		Details: map[string]any{
			"recordId":    record.ID.String(),
			"category":    record.Category,
			"phiTypes":    record.PHITypes,
			"contentHash": record.ContentHash,
		},
	}, nil
}

// List returns record metadata for a subject.
// GET /v1/subjects/:subject_id/records?offset=0&limit=50
func (h *RecordHandler) List(c *gin.Context) (*auditHttp.Response, error) {
	access, err := readAccess(c)
	if err != nil {
		return nil, err
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		return nil, err
	}

	records, err := h.recordUseCase.List(c.Request.Context(), access, offset, limit)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    dto.MapRecordsToListResponse(records),
		Details: map[string]any{"basis": access.Basis(), "count": len(records)},
	}, nil
}

// Get returns a decrypted, sanitized record.
// GET /v1/subjects/:subject_id/records/:record_id
func (h *RecordHandler) Get(c *gin.Context) (*auditHttp.Response, error) {
	access, record, err := h.read(c)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    dto.MapRecordToResponse(record),
		Details: map[string]any{"recordId": record.ID.String(), "basis": access.Basis()},
	}, nil
}

// Download returns the decrypted, sanitized record as a JSON attachment.
// GET /v1/subjects/:subject_id/records/:record_id/download
func (h *RecordHandler) Download(c *gin.Context) (*auditHttp.Response, error) {
	access, record, err := h.read(c)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status: http.StatusOK,
		Body:   dto.MapRecordToResponse(record),
		Headers: map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=\"record-%s.json\"", record.ID),
			DownloadPurposeHeader: access.DeclaredPurpose(),
		},
		Details: map[string]any{"recordId": record.ID.String(), "basis": access.Basis(), "download": true},
	}, nil
}

// Delete soft deletes one record. Requires X-Delete-Confirmation: confirmed.
// DELETE /v1/subjects/:subject_id/records/:record_id
func (h *RecordHandler) Delete(c *gin.Context) (*auditHttp.Response, error) {
	subjectID := c.Param("subject_id")
	if err := deleteAllowed(c, subjectID); err != nil {
		return nil, err
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return nil, err
	}

	if err := h.recordUseCase.Delete(c.Request.Context(), subjectID, recordID); err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusNoContent,
		Details: map[string]any{"recordId": recordID.String()},
	}, nil
}

// DeleteAll soft deletes every record of a subject. Requires X-Delete-Confirmation: confirmed.
// DELETE /v1/subjects/:subject_id/records
func (h *RecordHandler) DeleteAll(c *gin.Context) (*auditHttp.Response, error) {
	subjectID := c.Param("subject_id")
	if err := deleteAllowed(c, subjectID); err != nil {
		return nil, err
	}

	n, err := h.recordUseCase.DeleteAll(c.Request.Context(), subjectID)
	if err != nil {
		return nil, err
	}

	return &auditHttp.Response{
		Status:  http.StatusOK,
		Body:    dto.DeleteRecordsResponse{SubjectID: subjectID, Deleted: n},
		Details: map[string]any{"deleted": n},
	}, nil
}

func (h *RecordHandler) read(c *gin.Context) (recordsDomain.Access, *recordsDomain.Record, error) {
	access, err := readAccess(c)
	if err != nil {
		return access, nil, err
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return access, nil, err
	}

	record, err := h.recordUseCase.Get(c.Request.Context(), access, recordID)
	if err != nil {
		return access, nil, err
	}
	return access, record, nil
}

// readAccess builds the access basis from the caller, the purpose header and
// the emergency header. An emergency header only reaches this point after the
// authorization middleware validated the grant.
func readAccess(c *gin.Context) (recordsDomain.Access, error) {
	actor, ok := accessHttp.GetActor(c.Request.Context())
	if !ok {
		return recordsDomain.Access{}, apperrors.ErrUnauthorized
	}
	return recordsDomain.Access{
		ActorID:   actor.ID,
		SubjectID: c.Param("subject_id"),
		Purpose:   c.GetHeader(PurposeHeader),
		Emergency: accessHttp.IsEmergencyRequest(c),
	}, nil
}

// deleteAllowed checks the confirmation header and that the caller is the
// subject or an administrator.
func deleteAllowed(c *gin.Context, subjectID string) error {
	if c.GetHeader(DeleteConfirmationHeader) != deleteConfirmed {
		return recordsDomain.ErrDeleteNotConfirmed
	}
	actor, ok := accessHttp.GetActor(c.Request.Context())
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if actor.Role != accessDomain.RoleAdmin && actor.ID != subjectID {
		return apperrors.Wrap(apperrors.ErrForbidden, "only the data subject may delete its records")
	}
	return nil
}

func recordIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid record id")
	}
	return id, nil
}
