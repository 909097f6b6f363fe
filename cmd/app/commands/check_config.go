package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/medmarket/phiguard/internal/config"
)

type configSummary struct {
	Environment      string `json:"environment"`
	DBDriver         string `json:"db_driver"`
	AuditSink        string `json:"audit_sink"`
	AuditAsync       bool   `json:"audit_async"`
	KMSEnabled       bool   `json:"kms_enabled"`
	RedisEnabled     bool   `json:"redis_enabled"`
	KafkaEnabled     bool   `json:"kafka_enabled"`
	ArchiveEnabled   bool   `json:"archive_enabled"`
	PHIPatternsFile  string `json:"phi_patterns_file,omitempty"`
	SessionTimeout   string `json:"session_timeout"`
	EmergencyWindow  string `json:"emergency_window"`
	AuditRetention   string `json:"audit_retention"`
	RateLimitRequest int    `json:"rate_limit_requests"`
}

// RunCheckConfig validates cfg and prints which backends are enabled.
// Connection strings and key material are never printed.
func RunCheckConfig(cfg *config.Config, w io.Writer, format string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	summary := configSummary{
		Environment:      cfg.Environment,
		DBDriver:         cfg.DBDriver,
		AuditSink:        cfg.AuditSink,
		AuditAsync:       cfg.AuditAsyncBuffer > 0,
		KMSEnabled:       cfg.KMSKeyURI != "",
		RedisEnabled:     cfg.RedisURL != "",
		KafkaEnabled:     cfg.KafkaBrokers != "",
		ArchiveEnabled:   cfg.AuditArchiveBucket != "",
		PHIPatternsFile:  cfg.PHIPatternsFile,
		SessionTimeout:   cfg.SessionTimeout.String(),
		EmergencyWindow:  cfg.EmergencyAccessWindow.String(),
		AuditRetention:   cfg.AuditRetention.String(),
		RateLimitRequest: cfg.RateLimitRequests,
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	_, _ = fmt.Fprintf(w, "Configuration OK (%s)\n", summary.Environment)
	_, _ = fmt.Fprintf(w, "  database:         %s\n", summary.DBDriver)
	_, _ = fmt.Fprintf(w, "  audit sink:       %s (async: %t)\n", summary.AuditSink, summary.AuditAsync)
	_, _ = fmt.Fprintf(w, "  audit retention:  %s\n", summary.AuditRetention)
	_, _ = fmt.Fprintf(w, "  kms:              %t\n", summary.KMSEnabled)
	_, _ = fmt.Fprintf(w, "  redis:            %t\n", summary.RedisEnabled)
	_, _ = fmt.Fprintf(w, "  kafka:            %t\n", summary.KafkaEnabled)
	_, _ = fmt.Fprintf(w, "  archive:          %t\n", summary.ArchiveEnabled)
	_, _ = fmt.Fprintf(w, "  session timeout:  %s\n", summary.SessionTimeout)
	_, _ = fmt.Fprintf(w, "  emergency window: %s\n", summary.EmergencyWindow)
	return nil
}
