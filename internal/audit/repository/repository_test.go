package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

var testTime = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func newTestEntry() *auditDomain.Entry {
	return &auditDomain.Entry{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   "req-1",
		Timestamp:   testTime,
		Level:       auditDomain.LevelInfo,
		Actor:       auditDomain.Actor{ID: "dr-1", Role: "physician", IP: "10.0.0.1", UserAgent: "curl"},
		Action:      "RECORD_READ",
		Resource:    "subjects/p-1/records",
		Outcome:     auditDomain.OutcomeSuccess,
		DurationMs:  7,
		Details:     map[string]any{"purpose": "treatment"},
		RetainUntil: testTime.Add(2190 * 24 * time.Hour),
		Signature:   []byte{1, 2, 3},
	}
}

func entryColumnNames() []string {
	return []string{
		"id", "request_id", "occurred_at", "level", "actor_id", "actor_role", "actor_ip",
		"actor_user_agent", "action", "resource", "outcome", "duration_ms", "details",
		"corrects_request_id", "retain_until", "signature",
	}
}

func entryRow(rows *sqlmock.Rows, id any, e *auditDomain.Entry, corrects any) *sqlmock.Rows {
	return rows.AddRow(
		id, e.RequestID, e.Timestamp, string(e.Level), e.Actor.ID, e.Actor.Role, e.Actor.IP,
		e.Actor.UserAgent, e.Action, e.Resource, string(e.Outcome), e.DurationMs,
		[]byte(`{"purpose":"treatment"}`), corrects, e.RetainUntil, e.Signature,
	)
}

func TestPostgreSQLAuditLogRepository_Write(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	entry := newTestEntry()

	mock.ExpectExec(`INSERT INTO audit_logs .* ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(
			entry.ID.String(), "req-1", testTime, "INFO", "dr-1", "physician", "10.0.0.1", "curl",
			"RECORD_READ", "subjects/p-1/records", "SUCCESS", int64(7),
			[]byte(`{"purpose":"treatment"}`), nil, entry.RetainUntil, []byte{1, 2, 3},
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Write(context.Background(), entry))
	assert.Equal(t, "postgresql", repo.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_WriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(assert.AnError)

	err = repo.Write(context.Background(), newTestEntry())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	entry := newTestEntry()
	from := testTime.Add(-time.Hour)

	rows := entryRow(sqlmock.NewRows(entryColumnNames()), entry.ID.String(), entry, "req-0")
	mock.ExpectQuery(`SELECT .* FROM audit_logs WHERE occurred_at >= \$1 AND actor_id = \$2 ORDER BY occurred_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(from, "dr-1", 10, 0).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), auditDomain.ListFilter{
		From:    &from,
		ActorID: "dr-1",
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "treatment", entries[0].Details["purpose"])
	assert.Equal(t, "req-0", entries[0].CorrectsRequestID)
	assert.Equal(t, auditDomain.OutcomeSuccess, entries[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_ListBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	from, to := testTime.Add(-time.Hour), testTime.Add(time.Hour)

	mock.ExpectQuery(`WHERE occurred_at >= \$1 AND occurred_at <= \$2`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(entryColumnNames()))

	entries, err := repo.ListBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestMySQLAuditLogRepository_Write(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)
	entry := newTestEntry()
	entry.Details = nil
	entry.CorrectsRequestID = "req-0"
	rawID, _ := entry.ID.MarshalBinary()

	mock.ExpectExec(`INSERT IGNORE INTO audit_logs`).
		WithArgs(
			rawID, "req-1", testTime, "INFO", "dr-1", "physician", "10.0.0.1", "curl",
			"RECORD_READ", "subjects/p-1/records", "SUCCESS", int64(7),
			nil, "req-0", entry.RetainUntil, []byte{1, 2, 3},
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Write(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_ListByRequestID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)
	entry := newTestEntry()
	rawID, _ := entry.ID.MarshalBinary()

	mock.ExpectQuery(`WHERE request_id = \?`).
		WithArgs("req-1").
		WillReturnRows(entryRow(sqlmock.NewRows(entryColumnNames()), rawID, entry, nil))

	entries, err := repo.ListByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Empty(t, entries[0].CorrectsRequestID)
	assert.Equal(t, entry.Signature, entries[0].Signature)
}

func TestMySQLAuditLogRepository_ListWithoutFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)

	mock.ExpectQuery(`FROM audit_logs ORDER BY occurred_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(50, 100).
		WillReturnRows(sqlmock.NewRows(entryColumnNames()))

	_, err = repo.List(context.Background(), auditDomain.ListFilter{Offset: 100, Limit: 50})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterClause(t *testing.T) {
	to := testTime
	where, args := filterClause(auditDomain.ListFilter{To: &to, Action: "CONSENT_CHECK"}, dollarPlaceholder)
	assert.Equal(t, " WHERE occurred_at <= $1 AND action = $2", where)
	assert.Equal(t, []any{to, "CONSENT_CHECK"}, args)

	where, args = filterClause(auditDomain.ListFilter{}, questionPlaceholder)
	assert.Empty(t, where)
	assert.Empty(t, args)
}
