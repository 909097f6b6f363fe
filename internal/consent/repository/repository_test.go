package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consentDomain "github.com/medmarket/phiguard/internal/consent/domain"
	"github.com/medmarket/phiguard/internal/database"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

var (
	issuedAt  = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	expiresAt = time.Date(2027, 2, 1, 9, 0, 0, 0, time.UTC)
)

func consentRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"subject_id", "purpose", "grantee", "granted", "issued_at", "expires_at"}).
		AddRow("p-1", "research", "dr-1", true, issuedAt, nil)
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"action", "actor_id", "grantee", "expires_at", "occurred_at"}).
		AddRow(consentDomain.EventGranted, "p-1", "dr-1", expiresAt, issuedAt).
		AddRow(consentDomain.EventRevoked, "p-1", "", nil, issuedAt.Add(time.Hour))
}

type consentRepo interface {
	Get(ctx context.Context, subjectID, purpose string) (*consentDomain.Record, error)
	Upsert(ctx context.Context, record *consentDomain.Record) error
	AppendEvent(ctx context.Context, subjectID, purpose string, event consentDomain.Event) error
}

var dialects = []struct {
	name        string
	newRepo     func(db *sql.DB) consentRepo
	upsertQuery string
}{
	{
		name:        "postgresql",
		newRepo:     func(db *sql.DB) consentRepo { return NewPostgreSQLConsentRepository(db) },
		upsertQuery: `INSERT INTO consents .* ON CONFLICT \(subject_id, purpose\) DO UPDATE`,
	},
	{
		name:        "mysql",
		newRepo:     func(db *sql.DB) consentRepo { return NewMySQLConsentRepository(db) },
		upsertQuery: `INSERT INTO consents .* ON DUPLICATE KEY UPDATE`,
	},
}

func TestConsentRepository_Get(t *testing.T) {
	for _, d := range dialects {
		t.Run(d.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(`SELECT .* FROM consents WHERE subject_id = .* AND purpose = `).
				WithArgs("p-1", "research").
				WillReturnRows(consentRow())
			mock.ExpectQuery(`SELECT .* FROM consent_events`).
				WithArgs("p-1", "research").
				WillReturnRows(eventRows())

			record, err := d.newRepo(db).Get(context.Background(), "p-1", "research")
			require.NoError(t, err)
			assert.Equal(t, "dr-1", record.Grantee)
			assert.True(t, record.Granted)
			require.NotNil(t, record.IssuedAt)
			assert.True(t, record.IssuedAt.Equal(issuedAt))
			assert.Nil(t, record.ExpiresAt)
			require.Len(t, record.History, 2)
			assert.Equal(t, consentDomain.EventGranted, record.History[0].Action)
			require.NotNil(t, record.History[0].ExpiresAt)
			assert.Nil(t, record.History[1].ExpiresAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConsentRepository_GetNotFound(t *testing.T) {
	for _, d := range dialects {
		t.Run(d.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(`SELECT .* FROM consents`).
				WithArgs("p-1", "research").
				WillReturnError(sql.ErrNoRows)

			_, err = d.newRepo(db).Get(context.Background(), "p-1", "research")
			assert.ErrorIs(t, err, consentDomain.ErrConsentNotFound)
			assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		})
	}
}

func TestConsentRepository_Upsert(t *testing.T) {
	for _, d := range dialects {
		t.Run(d.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectExec(d.upsertQuery).
				WithArgs("p-1", "research", "*", true, issuedAt, nil).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err = d.newRepo(db).Upsert(context.Background(), &consentDomain.Record{
				SubjectID: "p-1",
				Purpose:   "research",
				Grantee:   consentDomain.AnyGrantee,
				Granted:   true,
				IssuedAt:  &issuedAt,
			})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConsentRepository_AppendEventInTransaction(t *testing.T) {
	for _, d := range dialects {
		t.Run(d.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectBegin()
			mock.ExpectExec(`INSERT INTO consent_events`).
				WithArgs(sqlmock.AnyArg(), "p-1", "research", consentDomain.EventGranted, "p-1", "dr-1", expiresAt, issuedAt).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			repo := d.newRepo(db)
			err = database.NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
				return repo.AppendEvent(ctx, "p-1", "research", consentDomain.Event{
					Action:     consentDomain.EventGranted,
					ActorID:    "p-1",
					Grantee:    "dr-1",
					ExpiresAt:  &expiresAt,
					OccurredAt: issuedAt,
				})
			})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConsentRepository_UpsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO consents`).WillReturnError(assert.AnError)

	err = NewPostgreSQLConsentRepository(db).Upsert(context.Background(), &consentDomain.Record{SubjectID: "p-1"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMemoryConsentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConsentRepository()

	_, err := repo.Get(ctx, "p-1", "research")
	assert.ErrorIs(t, err, consentDomain.ErrConsentNotFound)

	require.NoError(t, repo.Upsert(ctx, &consentDomain.Record{
		SubjectID: "p-1", Purpose: "research", Granted: true, IssuedAt: &issuedAt,
	}))
	require.NoError(t, repo.AppendEvent(ctx, "p-1", "research", consentDomain.Event{Action: consentDomain.EventGranted}))

	record, err := repo.Get(ctx, "p-1", "research")
	require.NoError(t, err)
	assert.True(t, record.Granted)
	require.Len(t, record.History, 1)

	// Callers cannot mutate stored history through a returned record.
	record.History[0].Action = "TAMPERED"
	again, err := repo.Get(ctx, "p-1", "research")
	require.NoError(t, err)
	assert.Equal(t, consentDomain.EventGranted, again.History[0].Action)

	record.Granted = false
	require.NoError(t, repo.Upsert(ctx, record))
	again, err = repo.Get(ctx, "p-1", "research")
	require.NoError(t, err)
	assert.False(t, again.Granted)
	assert.Len(t, again.History, 1)
}
