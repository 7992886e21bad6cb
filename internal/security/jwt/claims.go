package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is shared by access and refresh tokens; Type tells them apart.
type Claims struct {
	TokenVersion int    `json:"tv"`
	Type         string `json:"typ"`
	jwt.RegisteredClaims
}

func newClaims(typ, userID, jti string, tokenVersion int, now time.Time, ttl time.Duration) Claims {
	return Claims{
		TokenVersion: tokenVersion,
		Type:         typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
