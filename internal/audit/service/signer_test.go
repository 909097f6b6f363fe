package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(bytes.Repeat([]byte{0x11}, cryptoDomain.KeySize))
	require.NoError(t, err)
	return s
}

func testEntry() *auditDomain.Entry {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC)
	return &auditDomain.Entry{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   "req-1",
		Timestamp:   ts,
		Level:       auditDomain.LevelInfo,
		Actor:       auditDomain.Actor{ID: "dr-1", Role: "physician", IP: "10.0.0.1", UserAgent: "ua"},
		Action:      "RECORD_READ",
		Resource:    "subjects/p-1/records/r-1",
		Outcome:     auditDomain.OutcomeSuccess,
		DurationMs:  12,
		Details:     map[string]any{"purpose": "treatment", "status": float64(200)},
		RetainUntil: ts.Add(2190 * 24 * time.Hour),
	}
}

func TestNewSigner_InvalidKey(t *testing.T) {
	_, err := NewSigner([]byte("short"))
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKey)
}

func TestSigner_SignVerify(t *testing.T) {
	s := newTestSigner(t)
	entry := testEntry()

	sig, err := s.Sign(entry)
	require.NoError(t, err)
	assert.Len(t, sig, 32)

	entry.Signature = sig
	assert.NoError(t, s.Verify(entry))
}

func TestSigner_DetectsTampering(t *testing.T) {
	s := newTestSigner(t)

	mutations := map[string]func(e *auditDomain.Entry){
		"outcome":  func(e *auditDomain.Entry) { e.Outcome = auditDomain.OutcomeFailure },
		"actor":    func(e *auditDomain.Entry) { e.Actor.ID = "someone-else" },
		"details":  func(e *auditDomain.Entry) { e.Details["purpose"] = "research" },
		"time":     func(e *auditDomain.Entry) { e.Timestamp = e.Timestamp.Add(time.Second) },
		"retain":   func(e *auditDomain.Entry) { e.RetainUntil = e.Timestamp },
		"level":    func(e *auditDomain.Entry) { e.Level = auditDomain.LevelWarning },
		"resource": func(e *auditDomain.Entry) { e.Resource = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			entry := testEntry()
			sig, err := s.Sign(entry)
			require.NoError(t, err)
			entry.Signature = sig

			mutate(entry)
			assert.ErrorIs(t, s.Verify(entry), auditDomain.ErrSignatureInvalid)
		})
	}
}

func TestSigner_FieldBoundaries(t *testing.T) {
	s := newTestSigner(t)

	a := testEntry()
	a.Action, a.Resource = "AB", "C"
	b := *a
	b.Action, b.Resource = "A", "BC"

	sigA, err := s.Sign(a)
	require.NoError(t, err)
	sigB, err := s.Sign(&b)
	require.NoError(t, err)
	assert.NotEqual(t, sigA, sigB)
}

func TestSigner_IntAndFloatDetailsMatch(t *testing.T) {
	s := newTestSigner(t)

	a := testEntry()
	a.Details = map[string]any{"status": 200}
	b := *a
	b.Details = map[string]any{"status": float64(200)}

	sigA, err := s.Sign(a)
	require.NoError(t, err)
	sigB, err := s.Sign(&b)
	require.NoError(t, err)
	assert.Equal(t, sigA, sigB)
}

func TestSigner_Close(t *testing.T) {
	s := newTestSigner(t)
	key := s.key
	s.Close()
	assert.Equal(t, make([]byte, 32), key)
}
