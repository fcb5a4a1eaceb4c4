package repo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tscrond/signin/internal/session"
	"go.uber.org/zap"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Repository{db: db, logger: zap.NewNop()}, mock
}

func TestGet(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "email", "oauth_state", "created_at", "updated_at", "expires_at"}).
		AddRow("s1", "u@test.com", "", now, now, now.Add(time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(getSessionQuery)).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	u, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "u@test.com", u.Email)
	assert.Equal(t, now.Add(time.Hour), u.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSessionQuery)).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestGet_DatabaseError(t *testing.T) {
	repo, mock := newMockRepository(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(getSessionQuery)).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnError(boom)

	_, err := repo.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

func TestSave(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	u := &session.User{ID: "s1", Email: "u@test.com", CreatedAt: now, UpdatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec(regexp.QuoteMeta(saveSessionQuery)).
		WithArgs("s1", "u@test.com", "", now, now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_EmptyID(t *testing.T) {
	repo, _ := newMockRepository(t)
	assert.Error(t, repo.Save(context.Background(), &session.User{}))
}

func TestDelete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteSessionQuery)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpired(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(purgeSessionsQuery)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestOpen_RequiresConnString(t *testing.T) {
	_, err := Open("", zap.NewNop())
	assert.Error(t, err)
}
