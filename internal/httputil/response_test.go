package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

type deniedError struct{}

func (deniedError) Error() string    { return "mfa required" }
func (deniedError) ErrorCode() string { return "MFA_REQUIRED" }
func (deniedError) NextStep() string  { return "mfa" }
func (deniedError) Unwrap() error     { return apperrors.ErrForbidden }

func newTestContext(detailed bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(DetailedErrorsKey, detailed)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"locked", apperrors.ErrLocked, http.StatusLocked, "account_locked"},
		{"too many requests", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"consent required", apperrors.ErrConsentRequired, http.StatusForbidden, "consent_required"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(false)
			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedError, decodeError(t, w).Error)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestHandleErrorGin_CodedError(t *testing.T) {
	c, w := newTestContext(false)
	HandleErrorGin(c, deniedError{}, nil)

	resp := decodeError(t, w)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "MFA_REQUIRED", resp.Code)
	assert.Equal(t, "mfa", resp.RequiredStep)
}

func TestHandleErrorGin_MessageDetail(t *testing.T) {
	err := apperrors.Wrap(apperrors.ErrInvalidInput, "reason is required")

	t.Run("production hides details", func(t *testing.T) {
		c, w := newTestContext(false)
		HandleErrorGin(c, err, nil)
		assert.Equal(t, "The request failed validation", decodeError(t, w).Message)
	})

	t.Run("development shows details", func(t *testing.T) {
		c, w := newTestContext(true)
		HandleErrorGin(c, err, nil)
		assert.Equal(t, "reason is required: invalid input", decodeError(t, w).Message)
	})

	t.Run("internal errors are never detailed", func(t *testing.T) {
		c, w := newTestContext(true)
		HandleErrorGin(c, errors.New("pq: connection refused"), nil)
		assert.Equal(t, "An internal error occurred", decodeError(t, w).Message)
	})
}

func TestHandleErrorGin_NilError(t *testing.T) {
	c, w := newTestContext(false)
	HandleErrorGin(c, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext(false)
	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "The request is malformed", resp.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext(false)
	HandleValidationErrorGin(c, errors.New("reason: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "reason: cannot be blank.", resp.Message)
}

func TestErrorDetailMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorDetailMiddleware(true))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"detailed": c.GetBool(DetailedErrorsKey)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"detailed":true}`, w.Body.String())
}
