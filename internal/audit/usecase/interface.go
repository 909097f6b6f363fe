// Package usecase implements the AuditLogger: signed, append-only audit entries
// with a local fallback when the primary sink fails, plus the read side used by
// the audit log API and the maintenance commands.
package usecase

import (
	"context"
	"io"
	"time"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// Sink persists audit entries. Implementations must be append-only.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// Write appends entry. Writing an entry whose ID already exists is a no-op.
	Write(ctx context.Context, entry *auditDomain.Entry) error
}

// Reader queries persisted audit entries.
type Reader interface {
	// List returns entries ordered by timestamp descending.
	List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.Entry, error)

	// ListBetween returns every entry in [from, to] ordered by timestamp ascending.
	ListBetween(ctx context.Context, from, to time.Time) ([]*auditDomain.Entry, error)

	// ListByRequestID returns the entries recorded for requestID.
	ListByRequestID(ctx context.Context, requestID string) ([]*auditDomain.Entry, error)
}

// FallbackStore keeps entries the primary sink rejected until they are reconciled.
type FallbackStore interface {
	Write(ctx context.Context, entry *auditDomain.Entry) error
	ListPending(ctx context.Context, limit int) ([]*auditDomain.Entry, error)
	MarkReconciled(ctx context.Context, ids []string) error
}

// ArchiveStore receives exported audit entries for long-term retention.
type ArchiveStore interface {
	Put(ctx context.Context, key string, body io.Reader) error
}

// EntrySigner signs and verifies entries.
type EntrySigner interface {
	Sign(entry *auditDomain.Entry) ([]byte, error)
	Verify(entry *auditDomain.Entry) error
}

// AuditLogger records audit entries. Log never fails: sink errors are routed
// to the fallback store and reported out of band.
type AuditLogger interface {
	Log(ctx context.Context, entry *auditDomain.Entry)
}

// AuditLogUseCase exposes the read and maintenance side of the audit trail.
type AuditLogUseCase interface {
	// List returns entries matching filter, newest first.
	List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.Entry, error)

	// VerifyBatch checks the signature of every entry in [from, to].
	VerifyBatch(ctx context.Context, from, to time.Time) (*auditDomain.VerificationReport, error)

	// Correct appends a compensating entry that references an existing request.
	Correct(ctx context.Context, correctsRequestID string, actor auditDomain.Actor, reason string) error

	// Reconcile replays pending fallback entries into the primary sink and
	// returns how many were replayed.
	Reconcile(ctx context.Context, batchSize int) (int, error)

	// Archive exports every entry in [from, to] as JSON lines under key and
	// returns how many were written.
	Archive(ctx context.Context, from, to time.Time, key string) (int, error)
}
