// Package http provides the HTTP server and route wiring for the compliance API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	accessService "github.com/medmarket/phiguard/internal/access/service"
	accessUseCase "github.com/medmarket/phiguard/internal/access/usecase"
	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	"github.com/medmarket/phiguard/internal/config"
	consentHttp "github.com/medmarket/phiguard/internal/consent/http"
	cryptoHttp "github.com/medmarket/phiguard/internal/crypto/http"
	emergencyHttp "github.com/medmarket/phiguard/internal/emergency/http"
	"github.com/medmarket/phiguard/internal/httputil"
	"github.com/medmarket/phiguard/internal/metrics"
	phiHttp "github.com/medmarket/phiguard/internal/phi/http"
	recordsDomain "github.com/medmarket/phiguard/internal/records/domain"
	recordsHttp "github.com/medmarket/phiguard/internal/records/http"
)

// Audited actions of routes that have no domain constant.
const (
	ActionConsentRead     = "CONSENT_READ"
	ActionConsentVerify   = "CONSENT_VERIFY"
	ActionEmergencyAccess = "EMERGENCY_ACCESS_REQUEST"
	ActionAuditLogRead    = "AUDIT_LOG_READ"
	ActionAuditLogCorrect = "AUDIT_LOG_CORRECT"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// Handlers groups the collaborators the API routes need.
type Handlers struct {
	Verifier      accessService.TokenVerifier
	Guard         accessUseCase.AccessGuard
	Auditor       *auditHttp.Auditor
	PHI           *phiHttp.PHIHandler
	Crypto        *cryptoHttp.CryptoHandler
	Consent       *consentHttp.ConsentHandler
	Emergency     *emergencyHttp.EmergencyHandler
	Records       *recordsHttp.RecordHandler
	AuditLogs     *auditHttp.AuditLogHandler
	MeterProvider metric.MeterProvider
}

// NewServer creates a new HTTP server.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db: db,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		checks: make(map[string]ReadinessCheck),
	}
}

// AddReadinessCheck registers an extra component reported by /ready.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// SetupRouter configures the Gin router with all routes and middleware.
func (s *Server) SetupRouter(cfg *config.Config, h Handlers) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(auditHttp.RequestMetaMiddleware())
	router.Use(httputil.ErrorDetailMiddleware(cfg.IsDevelopment()))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MetricsEnabled && h.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(h.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(accessHttp.AuthenticationMiddleware(h.Verifier, s.logger))

	authorize := func(opts accessDomain.Options, resource func(c *gin.Context) string) gin.HandlerFunc {
		return accessHttp.AuthorizationMiddleware(h.Guard, accessHttp.Require(opts, resource), s.logger)
	}
	clinical := []string{accessDomain.RolePhysician, accessDomain.RoleNurse, accessDomain.RoleAdmin}
	readers := []string{
		accessDomain.RolePatient,
		accessDomain.RolePhysician,
		accessDomain.RoleNurse,
		accessDomain.RoleResearcher,
		accessDomain.RoleAdmin,
	}
	admin := []string{accessDomain.RoleAdmin}

	phi := v1.Group("/phi")
	{
		opts := accessDomain.Options{Roles: append([]string{accessDomain.RoleResearcher}, clinical...)}
		phi.POST("/scan",
			authorize(opts, phiHttp.Resource),
			h.Auditor.Wrap(phiHttp.ActionScan, phiHttp.Resource, h.PHI.Scan))
		phi.POST("/verify-deidentification",
			authorize(opts, phiHttp.Resource),
			h.Auditor.Wrap(phiHttp.ActionVerifyDeIdentification, phiHttp.Resource, h.PHI.VerifyDeIdentification))
	}

	crypto := v1.Group("/crypto")
	{
		crypto.POST("/encrypt",
			authorize(accessDomain.Options{Roles: clinical}, cryptoHttp.Resource),
			h.Auditor.Wrap(cryptoHttp.ActionEncrypt, cryptoHttp.Resource, h.Crypto.Encrypt))
		crypto.POST("/decrypt",
			authorize(accessDomain.Options{Roles: clinical, RequireMFA: true}, cryptoHttp.Resource),
			h.Auditor.Wrap(cryptoHttp.ActionDecrypt, cryptoHttp.Resource, h.Crypto.Decrypt))
	}

	consents := v1.Group("/consents")
	{
		owners := accessDomain.Options{Roles: []string{accessDomain.RolePatient, accessDomain.RoleAdmin}}
		consentsResource := func(*gin.Context) string { return "consents" }
		consents.POST("",
			authorize(owners, consentsResource),
			h.Auditor.Wrap(auditDomain.ActionConsentGranted, consentsResource, h.Consent.Grant))
		consents.GET("/:subject_id/:purpose",
			authorize(accessDomain.Options{Roles: readers}, consentHttp.SubjectResource),
			h.Auditor.Wrap(ActionConsentRead, consentHttp.SubjectResource, h.Consent.Get))
		consents.DELETE("/:subject_id/:purpose",
			authorize(owners, consentHttp.SubjectResource),
			h.Auditor.Wrap(auditDomain.ActionConsentRevoked, consentHttp.SubjectResource, h.Consent.Revoke))
		consents.GET("/:subject_id/:purpose/verify",
			authorize(accessDomain.Options{Roles: readers}, consentHttp.SubjectResource),
			h.Auditor.Wrap(ActionConsentVerify, consentHttp.SubjectResource, h.Consent.Verify))
	}

	// The emergency use case runs the guard with its own role set.
	v1.POST("/emergency-access",
		h.Auditor.Wrap(ActionEmergencyAccess, emergencyHttp.GrantResource, h.Emergency.Grant))

	records := v1.Group("/subjects/:subject_id/records")
	{
		read := authorize(accessDomain.Options{Roles: readers}, recordsHttp.SubjectResource)
		owners := authorize(
			accessDomain.Options{Roles: []string{accessDomain.RolePatient, accessDomain.RoleAdmin}},
			recordsHttp.SubjectResource,
		)
		records.POST("",
			authorize(accessDomain.Options{Roles: clinical}, recordsHttp.SubjectResource),
			h.Auditor.Wrap(recordsDomain.ActionCreate, recordsHttp.SubjectResource, h.Records.Create))
		records.GET("", read,
			h.Auditor.Wrap(recordsDomain.ActionList, recordsHttp.SubjectResource, h.Records.List))
		records.GET("/:record_id", read,
			h.Auditor.Wrap(recordsDomain.ActionRead, recordsHttp.SubjectResource, h.Records.Get))
		records.GET("/:record_id/download", read,
			h.Auditor.Wrap(recordsDomain.ActionDownload, recordsHttp.SubjectResource, h.Records.Download))
		records.DELETE("/:record_id", owners,
			h.Auditor.Wrap(recordsDomain.ActionDelete, recordsHttp.SubjectResource, h.Records.Delete))
		records.DELETE("", owners,
			h.Auditor.Wrap(recordsDomain.ActionDeleteAll, recordsHttp.SubjectResource, h.Records.DeleteAll))
	}

	auditLogs := v1.Group("/audit-logs")
	{
		auditResource := func(*gin.Context) string { return "audit-logs" }
		auditLogs.GET("",
			authorize(accessDomain.Options{Roles: admin}, auditResource),
			h.Auditor.Wrap(ActionAuditLogRead, auditResource, h.AuditLogs.List))
		auditLogs.POST("/corrections",
			authorize(accessDomain.Options{Roles: admin, RequireMFA: true}, auditResource),
			h.Auditor.Wrap(ActionAuditLogCorrect, auditResource, h.AuditLogs.Correct))
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	components := gin.H{}

	if s.db == nil {
		ready = false
		components["database"] = "error"
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("database readiness check failed", slog.Any("error", err))
		ready = false
		components["database"] = "error"
	} else {
		components["database"] = "ok"
	}

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			ready = false
			components[name] = "error"
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
