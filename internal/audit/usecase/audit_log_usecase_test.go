package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	"github.com/medmarket/phiguard/internal/audit/repository"
	"github.com/medmarket/phiguard/internal/audit/usecase/mocks"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

type auditFixture struct {
	repo   *repository.MemoryAuditLogRepository
	logger *Logger
	uc     AuditLogUseCase
}

func newAuditFixture(t *testing.T, fallback FallbackStore, archive ArchiveStore) *auditFixture {
	t.Helper()
	repo := repository.NewMemoryAuditLogRepository()
	signer := newSigner(t)
	logger := NewLogger(repo, signer, discardLogger())
	return &auditFixture{
		repo:   repo,
		logger: logger,
		uc:     NewAuditLogUseCase(logger, repo, repo, signer, fallback, archive),
	}
}

func TestAuditLogUseCase_VerifyBatch(t *testing.T) {
	f := newAuditFixture(t, nil, nil)
	ctx := context.Background()

	for _, action := range []string{"A", "B", "C"} {
		require.NoError(t, f.logger.Record(ctx, &auditDomain.Entry{Action: action}))
	}

	// Tamper with one stored entry and strip the signature of another.
	entries := f.repo.Entries()
	entries[1].Outcome = auditDomain.OutcomeDenied
	entries[2].Signature = nil

	report, err := f.uc.VerifyBatch(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.Unsigned)
	assert.Equal(t, entries[1].ID, report.InvalidIDs[0])
	assert.False(t, report.Passed())
}

func TestAuditLogUseCase_Correct(t *testing.T) {
	f := newAuditFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.logger.Record(ctx, &auditDomain.Entry{
		RequestID: "req-orig",
		Action:    "RECORD_READ",
		Resource:  "subjects/p-1/records",
		Outcome:   auditDomain.OutcomeSuccess,
	}))

	admin := auditDomain.Actor{ID: "admin-1", Role: "admin"}
	require.NoError(t, f.uc.Correct(ctx, "req-orig", admin, "wrong outcome recorded"))

	entries := f.repo.Entries()
	require.Len(t, entries, 2)

	// The original is left untouched.
	assert.Equal(t, "RECORD_READ", entries[0].Action)
	assert.Equal(t, auditDomain.OutcomeSuccess, entries[0].Outcome)

	correction := entries[1]
	assert.Equal(t, auditDomain.ActionAuditCorrection, correction.Action)
	assert.Equal(t, "req-orig", correction.CorrectsRequestID)
	assert.Equal(t, "subjects/p-1/records", correction.Resource)
	assert.Equal(t, "admin-1", correction.Actor.ID)
	assert.Equal(t, "wrong outcome recorded", correction.Details["reason"])
}

func TestAuditLogUseCase_CorrectErrors(t *testing.T) {
	f := newAuditFixture(t, nil, nil)
	ctx := context.Background()

	err := f.uc.Correct(ctx, "missing", auditDomain.Actor{ID: "a"}, "reason")
	assert.ErrorIs(t, err, auditDomain.ErrOriginalEntryNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = f.uc.Correct(ctx, "req", auditDomain.Actor{ID: "a"}, "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAuditLogUseCase_Reconcile(t *testing.T) {
	ctx := context.Background()
	fallback := &mocks.MockFallbackStore{}
	f := newAuditFixture(t, fallback, nil)

	pending := []*auditDomain.Entry{
		{ID: mustV7(), RequestID: "r1", Action: "A"},
		{ID: mustV7(), RequestID: "r2", Action: "B"},
	}
	fallback.On("ListPending", mock.Anything, 2).Return(pending, nil).Once()
	fallback.On("MarkReconciled", mock.Anything, []string{pending[0].ID.String(), pending[1].ID.String()}).
		Return(nil).Once()
	fallback.On("ListPending", mock.Anything, 2).Return([]*auditDomain.Entry{}, nil).Once()

	n, err := f.uc.Reconcile(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.repo.Entries(), 2)
	fallback.AssertExpectations(t)
}

func TestAuditLogUseCase_ReconcileStopsOnSinkError(t *testing.T) {
	ctx := context.Background()
	fallback := &mocks.MockFallbackStore{}
	sink := &mocks.MockSink{}

	pending := []*auditDomain.Entry{
		{ID: mustV7(), Action: "A"},
		{ID: mustV7(), Action: "B"},
	}
	fallback.On("ListPending", mock.Anything, 10).Return(pending, nil)
	fallback.On("MarkReconciled", mock.Anything, []string{pending[0].ID.String()}).Return(nil)
	sink.On("Write", mock.Anything, pending[0]).Return(nil)
	sink.On("Write", mock.Anything, pending[1]).Return(assert.AnError)

	uc := NewAuditLogUseCase(nil, &mocks.MockReader{}, sink, newSigner(t), fallback, nil)
	n, err := uc.Reconcile(ctx, 10)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, n)
	fallback.AssertExpectations(t)
}

func TestAuditLogUseCase_ReconcileWithoutFallback(t *testing.T) {
	f := newAuditFixture(t, nil, nil)
	n, err := f.uc.Reconcile(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAuditLogUseCase_Archive(t *testing.T) {
	ctx := context.Background()
	archive := &mocks.MockArchiveStore{}
	f := newAuditFixture(t, nil, archive)

	require.NoError(t, f.logger.Record(ctx, &auditDomain.Entry{Action: "A"}))
	require.NoError(t, f.logger.Record(ctx, &auditDomain.Entry{Action: "B"}))

	var uploaded []byte
	archive.On("Put", mock.Anything, "audit/2026.jsonl", mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(2).(io.Reader))
		}).
		Return(nil)

	n, err := f.uc.Archive(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), "audit/2026.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(string(uploaded)), "\n")
	require.Len(t, lines, 2)
	var first auditDomain.Entry
	require.NoError(t, json.NewDecoder(bytes.NewReader([]byte(lines[0]))).Decode(&first))
	assert.Equal(t, "A", first.Action)
}

func TestAuditLogUseCase_ArchiveNotConfigured(t *testing.T) {
	f := newAuditFixture(t, nil, nil)
	_, err := f.uc.Archive(context.Background(), time.Now(), time.Now(), "k")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAuditLogUseCase_List(t *testing.T) {
	reader := &mocks.MockReader{}
	filter := auditDomain.ListFilter{ActorID: "dr-1", Limit: 20}
	reader.On("List", mock.Anything, filter).Return(nil, assert.AnError)

	uc := NewAuditLogUseCase(nil, reader, nil, nil, nil, nil)
	_, err := uc.List(context.Background(), filter)
	assert.ErrorIs(t, err, assert.AnError)
}

// The audit trail is append-only: no exported type in this package may offer
// a way to change or remove stored entries.
func TestNoMutatingOperations(t *testing.T) {
	forbidden := []string{"Update", "Delete", "Remove", "Purge", "Truncate", "Edit"}
	types := []reflect.Type{
		reflect.TypeOf((*Sink)(nil)).Elem(),
		reflect.TypeOf((*Reader)(nil)).Elem(),
		reflect.TypeOf((*AuditLogger)(nil)).Elem(),
		reflect.TypeOf((*AuditLogUseCase)(nil)).Elem(),
		reflect.TypeOf(&Logger{}),
		reflect.TypeOf(&AsyncLogger{}),
		reflect.TypeOf(&repository.PostgreSQLAuditLogRepository{}),
		reflect.TypeOf(&repository.MySQLAuditLogRepository{}),
		reflect.TypeOf(&repository.MemoryAuditLogRepository{}),
	}

	for _, typ := range types {
		for i := range typ.NumMethod() {
			name := typ.Method(i).Name
			for _, prefix := range forbidden {
				assert.Falsef(t, strings.HasPrefix(name, prefix), "%s exposes %s", typ, name)
			}
		}
	}
}
