package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

// Create inserts an active user with token_version 0.
func (s *SQLStore) Create(ctx context.Context, username, passwordHash string) (User, error) {
	const q = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, token_version, is_active, created_at, updated_at`
	var u User
	err := s.DB.QueryRowContext(ctx, q, username, passwordHash).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.TokenVersion, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return User{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByUsername returns active and inactive users alike.
func (s *SQLStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const q = `
		SELECT id, username, password_hash, token_version, is_active, created_at, updated_at
		FROM users
		WHERE username = $1`
	var u User
	err := s.DB.QueryRowContext(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.TokenVersion, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// TokenVersion returns ErrUserNotFound for missing and inactive users.
func (s *SQLStore) TokenVersion(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT token_version FROM users WHERE id = $1 AND is_active`
	var v int
	err := s.DB.QueryRowContext(ctx, q, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("token version: %w", err)
	}
	return v, nil
}

func (s *SQLStore) UpdatePasswordHash(ctx context.Context, userID int64, phc string) error {
	const q = `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, q, phc, userID)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}

// BumpTokenVersion invalidates every token issued to the user.
func (s *SQLStore) BumpTokenVersion(ctx context.Context, userID int64) error {
	const q = `UPDATE users SET token_version = token_version + 1, updated_at = now() WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
