package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	accessHttp "github.com/medmarket/phiguard/internal/access/http"
	auditHttp "github.com/medmarket/phiguard/internal/audit/http"
	recordsHttp "github.com/medmarket/phiguard/internal/records/http"
)

// createCORSMiddleware returns nil unless CORS is enabled with at least one
// explicit origin. Browser clients always send credentials, so "*" is dropped.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no explicit origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			accessHttp.EmergencyHeader,
			recordsHttp.PurposeHeader,
			recordsHttp.DeleteConfirmationHeader,
		},
		ExposeHeaders: []string{
			"X-Request-Id",
			auditHttp.ComplianceHeader,
			recordsHttp.DownloadPurposeHeader,
		},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})
}

// parseOrigins splits a comma-separated origin list, trimming whitespace and
// skipping empty entries and wildcards.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
