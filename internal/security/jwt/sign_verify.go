// Package jwtutil signs and parses HS256 access and refresh tokens.
package jwtutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrWrongType = errors.New("wrong token type")

type Config struct {
	Secret     []byte
	ClockSkew  time.Duration
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Signer struct {
	cfg Config
	now func() time.Time
}

func NewSigner(cfg Config) *Signer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &Signer{cfg: cfg, now: time.Now}
}

func (s *Signer) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *Signer) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// SignAccess returns (token, jti).
func (s *Signer) SignAccess(userID string, tokenVersion int) (string, string, error) {
	return s.sign(TypeAccess, userID, tokenVersion, s.cfg.AccessTTL)
}

// SignRefresh returns (token, jti).
func (s *Signer) SignRefresh(userID string, tokenVersion int) (string, string, error) {
	return s.sign(TypeRefresh, userID, tokenVersion, s.cfg.RefreshTTL)
}

func (s *Signer) sign(typ, userID string, tokenVersion int, ttl time.Duration) (string, string, error) {
	jti, err := randJTI()
	if err != nil {
		return "", "", err
	}
	claims := newClaims(typ, userID, jti, tokenVersion, s.now(), ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := t.SignedString(s.cfg.Secret)
	return str, jti, err
}

// ParseAccess verifies signature, expiry (with leeway) and token type.
func (s *Signer) ParseAccess(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, TypeAccess)
}

func (s *Signer) ParseRefresh(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, TypeRefresh)
}

func (s *Signer) parse(tokenStr, typ string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithLeeway(s.cfg.ClockSkew),
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: got %q", ErrWrongType, claims.Type)
	}
	return claims, nil
}

func randJTI() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
