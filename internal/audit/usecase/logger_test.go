package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/audit/repository"
	auditService "github.com/medmarket/phiguard/internal/audit/service"
	"github.com/medmarket/phiguard/internal/audit/usecase/mocks"
	"github.com/medmarket/phiguard/internal/config"
	metricsMocks "github.com/medmarket/phiguard/internal/metrics/mocks"
)

var fixedNow = time.Date(2026, 2, 10, 8, 0, 0, 987654321, time.UTC)

func newSigner(t *testing.T) *auditService.Signer {
	t.Helper()
	s, err := auditService.NewSigner(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogger_Record(t *testing.T) {
	sink := repository.NewMemoryAuditLogRepository()
	signer := newSigner(t)
	logger := NewLogger(sink, signer, discardLogger(), WithLoggerClock(func() time.Time { return fixedNow }))

	ctx := auditDomain.WithRequestMeta(context.Background(), auditDomain.RequestMeta{
		RequestID: "req-42",
		IP:        "192.0.2.1",
		UserAgent: "test-agent",
	})

	err := logger.Record(ctx, &auditDomain.Entry{
		Actor:    auditDomain.Actor{ID: "dr-1", Role: "physician"},
		Action:   "RECORD_READ",
		Resource: "subjects/p-1/records",
	})
	require.NoError(t, err)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	e := entries[0]

	assert.Equal(t, "req-42", e.RequestID)
	assert.Equal(t, "192.0.2.1", e.Actor.IP)
	assert.Equal(t, "test-agent", e.Actor.UserAgent)
	assert.Equal(t, auditDomain.LevelInfo, e.Level)
	assert.Equal(t, auditDomain.OutcomeSuccess, e.Outcome)
	assert.Equal(t, fixedNow.Truncate(time.Microsecond), e.Timestamp)
	assert.Equal(t, e.Timestamp.Add(config.MinAuditRetention), e.RetainUntil)
	assert.NotEmpty(t, e.Signature)
	assert.NoError(t, signer.Verify(e))
}

func TestLogger_RequestIDDefaultsToEntryID(t *testing.T) {
	sink := repository.NewMemoryAuditLogRepository()
	logger := NewLogger(sink, newSigner(t), discardLogger())

	logger.Log(context.Background(), &auditDomain.Entry{Action: "X"})

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, entries[0].ID.String(), entries[0].RequestID)
}

func TestLogger_RetentionIsNeverBelowSixYears(t *testing.T) {
	sink := repository.NewMemoryAuditLogRepository()
	logger := NewLogger(sink, newSigner(t), discardLogger(),
		WithRetention(24*time.Hour),
		WithLoggerClock(func() time.Time { return fixedNow }),
	)

	logger.Log(context.Background(), &auditDomain.Entry{Action: "X"})

	e := sink.Entries()[0]
	assert.GreaterOrEqual(t, e.RetainUntil.Sub(e.Timestamp), config.MinAuditRetention)
}

func TestLogger_LongerRetentionIsKept(t *testing.T) {
	sink := repository.NewMemoryAuditLogRepository()
	retention := config.MinAuditRetention + 365*24*time.Hour
	logger := NewLogger(sink, newSigner(t), discardLogger(), WithRetention(retention))

	logger.Log(context.Background(), &auditDomain.Entry{Action: "X"})

	e := sink.Entries()[0]
	assert.Equal(t, retention, e.RetainUntil.Sub(e.Timestamp))
}

func TestLogger_CancelledContextStillWrites(t *testing.T) {
	sink := repository.NewMemoryAuditLogRepository()
	logger := NewLogger(sink, newSigner(t), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger.Log(ctx, &auditDomain.Entry{Action: "X"})

	assert.Len(t, sink.Entries(), 1)
}

func TestLogger_SinkFailure(t *testing.T) {
	sink := &mocks.MockSink{}
	fallback := &mocks.MockFallbackStore{}
	metrics := &metricsMocks.MockComplianceMetrics{}

	sink.On("Name").Return("postgresql")
	sink.On("Write", mock.Anything, mock.Anything).Return(assert.AnError)
	fallback.On("Write", mock.Anything, mock.Anything).Return(nil)
	metrics.On("RecordAuditFailure", mock.Anything, "postgresql").Return()

	logger := NewLogger(sink, newSigner(t), discardLogger(), WithFallback(fallback), WithMetrics(metrics))

	err := logger.Record(context.Background(), &auditDomain.Entry{
		RequestID: "req-9",
		Action:    "RECORD_READ",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, auditDomain.ErrAuditWrite)

	// The original entry and the AUDIT_WRITE_FAILED entry both reach the fallback.
	require.Len(t, fallback.Calls, 2)
	original := fallback.Calls[0].Arguments.Get(1).(*auditDomain.Entry)
	failure := fallback.Calls[1].Arguments.Get(1).(*auditDomain.Entry)

	assert.Equal(t, "RECORD_READ", original.Action)
	assert.Equal(t, auditDomain.ActionAuditWriteFailed, failure.Action)
	assert.Equal(t, auditDomain.LevelError, failure.Level)
	assert.Equal(t, "req-9", failure.RequestID)
	assert.Equal(t, original.ID.String(), failure.Details["originalEntryId"])

	// Exactly two sink attempts: no recursion on the failure entry.
	sink.AssertNumberOfCalls(t, "Write", 2)
	metrics.AssertNumberOfCalls(t, "RecordAuditFailure", 2)
}

func TestLogger_FailureEntryReachesHealthySink(t *testing.T) {
	sink := &mocks.MockSink{}
	sink.On("Name").Return("kafka")
	sink.On("Write", mock.Anything, mock.MatchedBy(func(e *auditDomain.Entry) bool {
		return e.Action == "RECORD_READ"
	})).Return(assert.AnError)
	sink.On("Write", mock.Anything, mock.MatchedBy(func(e *auditDomain.Entry) bool {
		return e.Action == auditDomain.ActionAuditWriteFailed
	})).Return(nil)

	logger := NewLogger(sink, newSigner(t), discardLogger())

	assert.NotPanics(t, func() {
		logger.Log(context.Background(), &auditDomain.Entry{Action: "RECORD_READ"})
	})
	sink.AssertExpectations(t)
}

func TestLogger_FallbackFailureIsSwallowed(t *testing.T) {
	sink := &mocks.MockSink{}
	fallback := &mocks.MockFallbackStore{}
	sink.On("Name").Return("postgresql")
	sink.On("Write", mock.Anything, mock.Anything).Return(assert.AnError)
	fallback.On("Write", mock.Anything, mock.Anything).Return(assert.AnError)

	logger := NewLogger(sink, newSigner(t), discardLogger(), WithFallback(fallback))

	assert.NotPanics(t, func() {
		logger.Log(context.Background(), &auditDomain.Entry{Action: "X"})
	})
}

func mustV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
