// Package http provides the audited handler decorator, request metadata
// middleware and the audit log API.
package http

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	"github.com/medmarket/phiguard/internal/httputil"
)

// ComplianceHeader marks responses that went through the audited path.
const ComplianceHeader = "X-HIPAA-Compliant"

// Response is what an audited handler returns on success.
type Response struct {
	Status  int
	Body    any
	Headers map[string]string
	// Raw bodies are written as-is with ContentType and are never sanitized.
	Raw         []byte
	ContentType string
	// Details are merged into the terminal audit entry.
	Details map[string]any
}

// HandlerFunc is a handler whose outcome is recorded by the Auditor.
type HandlerFunc func(c *gin.Context) (*Response, error)

// ResourceFunc names the resource a request touches.
type ResourceFunc func(c *gin.Context) string

// ActorResolver returns the audited identity of the current request.
type ActorResolver func(c *gin.Context) auditDomain.Actor

// Sanitizer filters response bodies before serialization.
type Sanitizer interface {
	Sanitize(v any) any
}

// Auditor decorates handlers so every invocation produces exactly one terminal audit entry.
type Auditor struct {
	auditLogger auditUseCase.AuditLogger
	sanitizer   Sanitizer
	actor       ActorResolver
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuditor creates an Auditor.
func NewAuditor(
	auditLogger auditUseCase.AuditLogger,
	sanitizer Sanitizer,
	actor ActorResolver,
	logger *slog.Logger,
) *Auditor {
	return &Auditor{
		auditLogger: auditLogger,
		sanitizer:   sanitizer,
		actor:       actor,
		logger:      logger,
		now:         time.Now,
	}
}

// Wrap returns a gin handler that runs h, records the outcome under action and
// writes the sanitized response. The entry is finalized exactly once, including
// when h panics, in which case the panic is re-raised after recording.
func (a *Auditor) Wrap(action string, resource ResourceFunc, h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := a.now()
		var completed atomic.Bool

		finalize := func(outcome auditDomain.Outcome, status int, details map[string]any) {
			if !completed.CompareAndSwap(false, true) {
				return
			}

			level := auditDomain.LevelInfo
			if outcome != auditDomain.OutcomeSuccess {
				level = auditDomain.LevelWarning
			}

			merged := map[string]any{
				"method": c.Request.Method,
				"route":  c.FullPath(),
				"status": status,
			}
			for k, v := range details {
				merged[k] = v
			}

			a.auditLogger.Log(c.Request.Context(), &auditDomain.Entry{
				RequestID:  requestid.Get(c),
				Level:      level,
				Actor:      a.actor(c),
				Action:     action,
				Resource:   resource(c),
				Outcome:    outcome,
				DurationMs: a.now().Sub(start).Milliseconds(),
				Details:    merged,
			})
		}

		defer func() {
			if r := recover(); r != nil {
				finalize(auditDomain.OutcomeFailure, http.StatusInternalServerError, map[string]any{"panic": true})
				panic(r)
			}
		}()

		c.Header(ComplianceHeader, "true")

		resp, err := h(c)
		if err != nil {
			details := map[string]any{}
			var coded httputil.CodedError
			if apperrors.As(err, &coded) {
				details["code"] = coded.ErrorCode()
			}
			finalize(outcomeOf(err), statusOf(err), details)
			httputil.HandleErrorGin(c, err, a.logger)
			return
		}

		if resp == nil {
			resp = &Response{Status: http.StatusNoContent}
		}
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		finalize(auditDomain.OutcomeSuccess, resp.Status, resp.Details)

		for k, v := range resp.Headers {
			c.Header(k, v)
		}

		switch {
		case resp.Raw != nil:
			c.Data(resp.Status, resp.ContentType, resp.Raw)
		case resp.Body == nil:
			c.Status(resp.Status)
		default:
			c.JSON(resp.Status, a.sanitizer.Sanitize(resp.Body))
		}
	}
}

// outcomeOf classifies err as a denial or a failure.
func outcomeOf(err error) auditDomain.Outcome {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrForbidden),
		apperrors.Is(err, apperrors.ErrConsentRequired),
		apperrors.Is(err, apperrors.ErrLocked),
		apperrors.Is(err, apperrors.ErrTooManyRequests):
		return auditDomain.OutcomeDenied
	default:
		return auditDomain.OutcomeFailure
	}
}

// statusOf mirrors the status HandleErrorGin will write.
func statusOf(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrLocked):
		return http.StatusLocked
	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case apperrors.Is(err, apperrors.ErrConsentRequired), apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
