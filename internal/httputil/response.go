// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// DetailedErrorsKey is the gin context key that enables detailed error messages.
const DetailedErrorsKey = "detailed_errors"

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message,omitempty"`
	Code         string `json:"code,omitempty"`
	RequiredStep string `json:"required_step,omitempty"`
}

// CodedError is implemented by errors that carry a stable machine-readable code.
type CodedError interface {
	error
	ErrorCode() string
}

// StepError is implemented by errors that tell the client which step to complete next.
type StepError interface {
	error
	NextStep() string
}

// ErrorDetailMiddleware toggles detailed error messages for every request.
func ErrorDetailMiddleware(detailed bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DetailedErrorsKey, detailed)
		c.Next()
	}
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "conflict",
			Message: "A conflict occurred with existing data",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: "The request failed validation",
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrLocked):
		statusCode = http.StatusLocked
		errorResponse = ErrorResponse{
			Error:   "account_locked",
			Message: "Account is locked due to repeated access denials",
		}

	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		statusCode = http.StatusTooManyRequests
		errorResponse = ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many requests",
		}

	case apperrors.Is(err, apperrors.ErrConsentRequired):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "consent_required",
			Message: "The data subject has not consented to this purpose",
			Code:    "CONSENT_REQUIRED",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this resource",
		}

	default:
		// Internal details never reach the client.
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	var coded CodedError
	if apperrors.As(err, &coded) {
		errorResponse.Code = coded.ErrorCode()
	}
	var step StepError
	if apperrors.As(err, &step) {
		errorResponse.RequiredStep = step.NextStep()
	}
	if statusCode < http.StatusInternalServerError && c.GetBool(DetailedErrorsKey) {
		errorResponse.Message = err.Error()
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	message := "The request is malformed"
	if c.GetBool(DetailedErrorsKey) {
		message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
// Field level messages are always returned since they never carry PHI.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
		Code:    "VALIDATION_ERROR",
	})
}
