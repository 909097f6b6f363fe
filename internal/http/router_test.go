package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	accessService "github.com/medmarket/phiguard/internal/access/service"
	accessMocks "github.com/medmarket/phiguard/internal/access/usecase/mocks"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	auditMocks "github.com/medmarket/phiguard/internal/audit/usecase/mocks"
	"github.com/medmarket/phiguard/internal/config"
	consentHttp "github.com/medmarket/phiguard/internal/consent/http"
	consentMocks "github.com/medmarket/phiguard/internal/consent/usecase/mocks"
	cryptoHttp "github.com/medmarket/phiguard/internal/crypto/http"
	cryptoMocks "github.com/medmarket/phiguard/internal/crypto/usecase/mocks"
	emergencyHttp "github.com/medmarket/phiguard/internal/emergency/http"
	emergencyMocks "github.com/medmarket/phiguard/internal/emergency/usecase/mocks"
	phiHttp "github.com/medmarket/phiguard/internal/phi/http"
	phiService "github.com/medmarket/phiguard/internal/phi/service"
	recordsHttp "github.com/medmarket/phiguard/internal/records/http"
	recordsMocks "github.com/medmarket/phiguard/internal/records/usecase/mocks"
	"github.com/medmarket/phiguard/internal/sanitizer"
)

type routerFixture struct {
	server  *Server
	guard   *accessMocks.MockAccessGuard
	audit   *auditMocks.MockAuditLogger
	records *recordsMocks.MockRecordUseCase
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	detector := phiService.NewDetector()

	f := &routerFixture{
		server:  NewServer(nil, "localhost", 8080, logger),
		guard:   &accessMocks.MockAccessGuard{},
		audit:   &auditMocks.MockAuditLogger{},
		records: &recordsMocks.MockRecordUseCase{},
	}
	f.audit.On("Log", mock.Anything, mock.Anything).Return()

	f.server.SetupRouter(&config.Config{Environment: config.EnvironmentProduction}, Handlers{
		Verifier: accessService.NewTokenVerifier("test-signing-key", "phiguard"),
		Guard:    f.guard,
		Auditor: auditHttp.NewAuditor(
			f.audit, sanitizer.NewSanitizer(detector), accessHttp.AuditActor, logger,
		),
		PHI:       phiHttp.NewPHIHandler(detector, logger),
		Crypto:    cryptoHttp.NewCryptoHandler(&cryptoMocks.MockCryptoUseCase{}, logger),
		Consent:   consentHttp.NewConsentHandler(&consentMocks.MockConsentUseCase{}, logger),
		Emergency: emergencyHttp.NewEmergencyHandler(&emergencyMocks.MockEmergencyAccessHandler{}, logger),
		Records:   recordsHttp.NewRecordHandler(f.records, logger),
		AuditLogs: auditHttp.NewAuditLogHandler(&auditMocks.MockAuditLogUseCase{}, accessHttp.AuditActor, logger),
	})
	return f
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	f.server.GetHandler().ServeHTTP(w, req)
	return w
}

func TestSetupRouter_HealthEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestSetupRouter_DeniedRequestNeverReachesHandler(t *testing.T) {
	f := newRouterFixture(t)
	f.guard.On("Authorize", mock.Anything, (*accessDomain.Actor)(nil), mock.MatchedBy(func(o accessDomain.Options) bool {
		return o.Resource == "subjects/p-1/records" && !o.Emergency
	})).Return(&accessDomain.Decision{Allowed: false, ReasonCode: accessDomain.ReasonAuthRequired}, nil)

	w := f.do(http.MethodGet, "/v1/subjects/p-1/records", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, accessDomain.ReasonAuthRequired, body["code"])
	f.records.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.guard.AssertExpectations(t)
}

func TestSetupRouter_AllowedScanIsAuditedAndSanitized(t *testing.T) {
	f := newRouterFixture(t)
	f.guard.On("Authorize", mock.Anything, mock.Anything, mock.MatchedBy(func(o accessDomain.Options) bool {
		return o.Resource == "phi" && len(o.Roles) > 0
	})).Return(&accessDomain.Decision{Allowed: true}, nil)

	w := f.do(http.MethodPost, "/v1/phi/scan", `{"text":"call 555-123-4567"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(auditHttp.ComplianceHeader))
	assert.NotContains(t, w.Body.String(), "555-123-4567")
	f.audit.AssertCalled(t, "Log", mock.Anything, mock.MatchedBy(func(e *auditDomain.Entry) bool {
		return e.Action == phiHttp.ActionScan && e.Outcome == auditDomain.OutcomeSuccess
	}))
}

func TestSetupRouter_EmergencyHeaderReachesGuard(t *testing.T) {
	f := newRouterFixture(t)
	f.guard.On("Authorize", mock.Anything, mock.Anything, mock.MatchedBy(func(o accessDomain.Options) bool {
		return o.Emergency && o.Resource == "subjects/p-1/records"
	})).Return(&accessDomain.Decision{Allowed: false, ReasonCode: accessDomain.ReasonEmergencyAccessInvalid}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/subjects/p-1/records", nil)
	req.Header.Set(accessHttp.EmergencyHeader, "true")
	f.server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.guard.AssertExpectations(t)
}
