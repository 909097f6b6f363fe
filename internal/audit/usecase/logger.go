package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/config"
	apperrors "github.com/medmarket/phiguard/internal/errors"
	"github.com/medmarket/phiguard/internal/metrics"
)

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithFallback sets the store that receives entries the sink rejected.
func WithFallback(store FallbackStore) LoggerOption {
	return func(l *Logger) {
		l.fallback = store
	}
}

// WithRetention sets the retention period. Values below six years are raised to six years.
func WithRetention(retention time.Duration) LoggerOption {
	return func(l *Logger) {
		l.retention = max(retention, config.MinAuditRetention)
	}
}

// WithMetrics records write failures.
func WithMetrics(m metrics.ComplianceMetrics) LoggerOption {
	return func(l *Logger) {
		l.metrics = m
	}
}

// WithLoggerClock overrides the timestamp source.
func WithLoggerClock(now func() time.Time) LoggerOption {
	return func(l *Logger) {
		l.now = now
	}
}

// Logger completes, signs and writes audit entries synchronously.
type Logger struct {
	sink      Sink
	signer    EntrySigner
	fallback  FallbackStore
	metrics   metrics.ComplianceMetrics
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time
}

// NewLogger creates a Logger writing to sink.
func NewLogger(sink Sink, signer EntrySigner, logger *slog.Logger, opts ...LoggerOption) *Logger {
	l := &Logger{
		sink:      sink,
		signer:    signer,
		metrics:   metrics.NewNoOpComplianceMetrics(),
		logger:    logger,
		retention: config.MinAuditRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records entry and swallows any error.
func (l *Logger) Log(ctx context.Context, entry *auditDomain.Entry) {
	_ = l.Record(ctx, entry)
}

// Record completes and signs entry, then writes it to the sink. A sink failure
// is logged, the entry is handed to the fallback store, and a single
// AUDIT_WRITE_FAILED entry is attempted. The sink error is returned.
func (l *Logger) Record(ctx context.Context, entry *auditDomain.Entry) error {
	// Audit writes must outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)

	if err := l.prepare(ctx, entry); err != nil {
		l.logger.Error("failed to prepare audit entry",
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return err
	}

	err := l.sink.Write(ctx, entry)
	if err == nil {
		return nil
	}

	l.handleFailure(ctx, entry, err)
	return apperrors.Wrap(auditDomain.ErrAuditWrite, err.Error())
}

// prepare stamps identity, timestamps and the signature.
func (l *Logger) prepare(ctx context.Context, entry *auditDomain.Entry) error {
	meta, _ := auditDomain.RequestMetaFrom(ctx)

	if entry.ID == uuid.Nil {
		entry.ID = uuid.Must(uuid.NewV7())
	}
	if entry.RequestID == "" {
		entry.RequestID = meta.RequestID
	}
	if entry.RequestID == "" {
		entry.RequestID = entry.ID.String()
	}
	if entry.Actor.IP == "" {
		entry.Actor.IP = meta.IP
	}
	if entry.Actor.UserAgent == "" {
		entry.Actor.UserAgent = meta.UserAgent
	}
	if entry.Level == "" {
		entry.Level = auditDomain.LevelInfo
	}
	if entry.Outcome == "" {
		entry.Outcome = auditDomain.OutcomeSuccess
	}

	// Stored with microsecond precision in every backend.
	entry.Timestamp = l.now().UTC().Truncate(time.Microsecond)
	entry.RetainUntil = entry.Timestamp.Add(l.retention)

	sig, err := l.signer.Sign(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign audit entry")
	}
	entry.Signature = sig
	return nil
}

func (l *Logger) handleFailure(ctx context.Context, entry *auditDomain.Entry, writeErr error) {
	l.logger.Error("audit sink write failed",
		slog.String("sink", l.sink.Name()),
		slog.String("entry_id", entry.ID.String()),
		slog.String("request_id", entry.RequestID),
		slog.String("action", entry.Action),
		slog.Any("error", writeErr),
	)
	l.metrics.RecordAuditFailure(ctx, l.sink.Name())
	l.writeFallback(ctx, entry)

	if entry.Action == auditDomain.ActionAuditWriteFailed {
		return
	}

	failure := &auditDomain.Entry{
		RequestID: entry.RequestID,
		Level:     auditDomain.LevelError,
		Actor:     entry.Actor,
		Action:    auditDomain.ActionAuditWriteFailed,
		Resource:  entry.Resource,
		Outcome:   auditDomain.OutcomeFailure,
		Details: map[string]any{
			"originalEntryId": entry.ID.String(),
			"originalAction":  entry.Action,
			"sink":            l.sink.Name(),
		},
	}
	if err := l.prepare(ctx, failure); err != nil {
		return
	}
	if err := l.sink.Write(ctx, failure); err != nil {
		l.metrics.RecordAuditFailure(ctx, l.sink.Name())
		l.writeFallback(ctx, failure)
	}
}

func (l *Logger) writeFallback(ctx context.Context, entry *auditDomain.Entry) {
	if l.fallback == nil {
		return
	}
	if err := l.fallback.Write(ctx, entry); err != nil {
		l.logger.Error("audit fallback write failed",
			slog.String("entry_id", entry.ID.String()),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}
