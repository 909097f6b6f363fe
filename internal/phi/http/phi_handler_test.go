package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	auditMocks "github.com/medmarket/phiguard/internal/audit/usecase/mocks"
	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
	phiService "github.com/medmarket/phiguard/internal/phi/service"
)

type passthrough struct{}

func (passthrough) Sanitize(v any) any { return v }

func setupRouter(t *testing.T) (*gin.Engine, *auditMocks.MockAuditLogger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	audit := &auditMocks.MockAuditLogger{}
	audit.On("Log", mock.Anything, mock.Anything).Return()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewPHIHandler(phiService.NewDetector(phiService.DefaultMatchers()...), logger)
	auditor := auditHttp.NewAuditor(audit, passthrough{}, accessHttp.AuditActor, logger)

	router := gin.New()
	router.POST("/v1/phi/scan", auditor.Wrap(ActionScan, Resource, handler.Scan))
	router.POST("/v1/phi/verify-deidentification",
		auditor.Wrap(ActionVerifyDeIdentification, Resource, handler.VerifyDeIdentification))
	return router, audit
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestPHIHandler_Scan(t *testing.T) {
	t.Run("Finds SSN", func(t *testing.T) {
		router, audit := setupRouter(t)
		w := post(router, "/v1/phi/scan", `{"text":"SSN: 123-45-6789"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var result phiDomain.ScanResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.HasPHI)
		assert.Contains(t, result.Types, phiDomain.TypeSSN)

		require.Len(t, audit.Calls, 1)
		entry := audit.Calls[0].Arguments.Get(1).(*auditDomain.Entry)
		assert.Equal(t, ActionScan, entry.Action)
		assert.NotContains(t, entry.Details, "text")
	})

	t.Run("No identifiers", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/phi/scan", `{"text":"no identifiers here"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"hasPHI":false,"types":[]}`, w.Body.String())
	})

	t.Run("Empty text", func(t *testing.T) {
		router, _ := setupRouter(t)
		w := post(router, "/v1/phi/scan", `{"text":""}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPHIHandler_VerifyDeIdentification(t *testing.T) {
	router, _ := setupRouter(t)

	w := post(router, "/v1/phi/verify-deidentification",
		`{"record":{"age_band":"40-49","contact":{"email":"jane@example.com"}}}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var report phiDomain.DeIdentificationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.False(t, report.IsDeIdentified)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, "contact.email", report.Issues[0].Field)

	w = post(router, "/v1/phi/verify-deidentification", `{"record":{"age_band":"40-49"}}`)
	assert.JSONEq(t, `{"isDeIdentified":true,"issues":[]}`, w.Body.String())

	w = post(router, "/v1/phi/verify-deidentification", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
