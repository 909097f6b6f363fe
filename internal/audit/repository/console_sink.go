package repository

import (
	"context"
	"log/slog"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// ConsoleSink writes entries as structured log records.
type ConsoleSink struct {
	logger *slog.Logger
}

// Name returns the sink name.
func (c *ConsoleSink) Name() string {
	return "console"
}

// Write logs entry at a slog level matching its audit level.
func (c *ConsoleSink) Write(ctx context.Context, entry *auditDomain.Entry) error {
	level := slog.LevelInfo
	switch entry.Level {
	case auditDomain.LevelWarning:
		level = slog.LevelWarn
	case auditDomain.LevelError, auditDomain.LevelEmergency:
		level = slog.LevelError
	}

	c.logger.LogAttrs(ctx, level, "audit",
		slog.String("id", entry.ID.String()),
		slog.String("request_id", entry.RequestID),
		slog.Time("timestamp", entry.Timestamp),
		slog.String("audit_level", string(entry.Level)),
		slog.String("actor_id", entry.Actor.ID),
		slog.String("actor_role", entry.Actor.Role),
		slog.String("actor_ip", entry.Actor.IP),
		slog.String("action", entry.Action),
		slog.String("resource", entry.Resource),
		slog.String("outcome", string(entry.Outcome)),
		slog.Int64("duration_ms", entry.DurationMs),
		slog.Any("details", entry.Details),
		slog.String("corrects_request_id", entry.CorrectsRequestID),
		slog.Time("retain_until", entry.RetainUntil),
	)
	return nil
}

// NewConsoleSink creates a sink writing to logger.
func NewConsoleSink(logger *slog.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}
