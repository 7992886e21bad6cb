package auth

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db), mock
}

var userCols = []string{"id", "username", "password_hash", "token_version", "is_active", "created_at", "updated_at"}

func TestFindByUsername(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "ada", "$argon2id$x", 2, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	u, err := s.FindByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, 2, u.TokenVersion)
	assert.True(t, u.IsActive)

	_, err = s.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenVersion(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT token_version FROM users WHERE id = $1 AND is_active")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"token_version"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT token_version FROM users")).
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)

	v, err := s.TokenVersion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = s.TokenVersion(context.Background(), 8)
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateUsername(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ada", "phc").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := s.Create(context.Background(), "ada", "phc")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBumpTokenVersion(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET token_version = token_version + 1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET token_version")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.BumpTokenVersion(context.Background(), 1))
	assert.ErrorIs(t, s.BumpTokenVersion(context.Background(), 9), ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
