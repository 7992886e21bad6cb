// Package auth issues and rotates the API's bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

type TokenRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	TokenVersion int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore is the slice of user persistence the token endpoints need.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	TokenVersion(ctx context.Context, userID int64) (int, error)
	UpdatePasswordHash(ctx context.Context, userID int64, phc string) error
}
