package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/5w1tchy/library-api/internal/api/apperr"
	"github.com/5w1tchy/library-api/internal/logging"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
)

// ErrUserInactive is returned by a TokenVersions lookup for disabled users.
var ErrUserInactive = errors.New("user inactive")

// TokenVersions reports the current token_version of an active user.
type TokenVersions interface {
	TokenVersion(ctx context.Context, userID int64) (int, error)
}

// RequireAuth verifies the Bearer access token, checks its token_version
// against the user record, then puts the user id in the context.
func RequireAuth(signer *jwtutil.Signer, users TokenVersions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				unauthorized(w, r, "authentication credentials were not provided")
				return
			}
			tokenStr, err := bearer(raw)
			if err != nil {
				unauthorized(w, r, "invalid Authorization header")
				return
			}
			claims, err := signer.ParseAccess(tokenStr)
			if err != nil {
				unauthorized(w, r, "token is invalid or expired")
				return
			}
			uid, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || uid < 1 {
				unauthorized(w, r, "token is invalid or expired")
				return
			}

			ver, err := users.TokenVersion(r.Context(), uid)
			if err != nil {
				if r.Context().Err() == nil {
					logging.Ctx(r.Context()).Debug().Err(err).Int64("user_id", uid).Msg("token user lookup failed")
				}
				unauthorized(w, r, "user not found or inactive")
				return
			}
			if claims.TokenVersion != ver {
				unauthorized(w, r, "token revoked")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", detail)
}

func bearer(h string) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("no bearer")
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", errors.New("empty bearer")
	}
	return tok, nil
}
