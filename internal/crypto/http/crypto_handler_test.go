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
	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	cryptoUseCase "github.com/medmarket/phiguard/internal/crypto/usecase"
	phiService "github.com/medmarket/phiguard/internal/phi/service"
	"github.com/medmarket/phiguard/internal/sanitizer"
)

const testMasterKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupRouter(t *testing.T) (*gin.Engine, *auditMocks.MockAuditLogger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mk, err := cryptoDomain.ParseMasterKey(testMasterKeyHex)
	require.NoError(t, err)

	audit := &auditMocks.MockAuditLogger{}
	audit.On("Log", mock.Anything, mock.Anything).Return()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewCryptoHandler(cryptoUseCase.NewCryptoUseCase(mk), logger)
	auditor := auditHttp.NewAuditor(
		audit,
		sanitizer.NewSanitizer(phiService.NewDetector()),
		accessHttp.AuditActor,
		logger,
	)

	router := gin.New()
	router.POST("/v1/crypto/encrypt", auditor.Wrap(ActionEncrypt, Resource, handler.Encrypt))
	router.POST("/v1/crypto/decrypt", auditor.Wrap(ActionDecrypt, Resource, handler.Decrypt))
	return router, audit
}

func post(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCryptoHandler_RoundTrip(t *testing.T) {
	router, audit := setupRouter(t)

	w := post(router, "/v1/crypto/encrypt", map[string]any{
		"data":    map[string]any{"diagnosis": "flu", "ssn": "123-45-6789"},
		"purpose": "treatment",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var payload cryptoDomain.EncryptedPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.NoError(t, payload.Validate())
	assert.Equal(t, "treatment", payload.Purpose)
	assert.NotContains(t, w.Body.String(), "123-45-6789")

	w = post(router, "/v1/crypto/decrypt", map[string]any{"payload": payload})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "flu", data["diagnosis"])
	assert.NotContains(t, data, "ssn")

	require.Len(t, audit.Calls, 2)
	for _, call := range audit.Calls {
		entry := call.Arguments.Get(1).(*auditDomain.Entry)
		assert.Equal(t, auditDomain.OutcomeSuccess, entry.Outcome)
		assert.Equal(t, "treatment", entry.Details["purpose"])
	}
}

func TestCryptoHandler_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	w := post(router, "/v1/crypto/encrypt", map[string]any{"data": "x", "purpose": "Not A Purpose"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = post(router, "/v1/crypto/encrypt", map[string]any{"purpose": "treatment"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = post(router, "/v1/crypto/decrypt", map[string]any{"payload": map[string]any{"version": "1.0", "iv": "zz"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCryptoHandler_DecryptTampered(t *testing.T) {
	router, audit := setupRouter(t)

	w := post(router, "/v1/crypto/encrypt", map[string]any{"data": "note", "purpose": "treatment"})
	require.Equal(t, http.StatusCreated, w.Code)
	var payload cryptoDomain.EncryptedPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	payload.Purpose = "research"
	w = post(router, "/v1/crypto/decrypt", map[string]any{"payload": payload})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	entry := audit.Calls[len(audit.Calls)-1].Arguments.Get(1).(*auditDomain.Entry)
	assert.Equal(t, auditDomain.OutcomeFailure, entry.Outcome)
}
