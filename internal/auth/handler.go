package auth

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/5w1tchy/library-api/internal/api/apperr"
	"github.com/5w1tchy/library-api/internal/api/httpx"
	"github.com/5w1tchy/library-api/internal/logging"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/security/password"
	"github.com/5w1tchy/library-api/internal/validate"
)

const badCredentials = "no active account found with the given credentials"

type Handler struct {
	Store  UserStore
	Signer *jwtutil.Signer
	Hasher *password.Hasher
	// Deny is optional; without it refresh tokens are not single-use.
	Deny Denylist

	now       func() time.Time
	dummyOnce sync.Once
	dummy     string
}

func New(store UserStore, signer *jwtutil.Signer, hasher *password.Hasher, deny Denylist) *Handler {
	return &Handler{Store: store, Signer: signer, Hasher: hasher, Deny: deny, now: time.Now}
}

// Obtain handles POST /api/token/.
func (h *Handler) Obtain(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.Handle(w, r, err)
		return
	}

	ctx := r.Context()
	u, err := h.Store.FindByUsername(ctx, req.Username)
	if errors.Is(err, ErrUserNotFound) {
		h.burnHash(req.Password)
		unauthorized(w, r, badCredentials)
		return
	}
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}

	ok, needsRehash, err := h.Hasher.Verify(req.Password, u.PasswordHash)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("user_id", u.ID).Msg("stored password hash unreadable")
	}
	if !ok || !u.IsActive {
		unauthorized(w, r, badCredentials)
		return
	}
	if needsRehash {
		if phc, err := h.Hasher.Hash(req.Password); err == nil {
			if err := h.Store.UpdatePasswordHash(ctx, u.ID, phc); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Int64("user_id", u.ID).Msg("password rehash failed")
			}
		}
	}

	pair, err := h.issue(u.ID, u.TokenVersion)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/token/refresh/. The presented refresh token is
// consumed and a new pair is issued.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.Handle(w, r, err)
		return
	}

	claims, err := h.Signer.ParseRefresh(req.Refresh)
	if err != nil {
		unauthorized(w, r, "token is invalid or expired")
		return
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid < 1 || claims.ID == "" {
		unauthorized(w, r, "token is invalid or expired")
		return
	}

	ctx := r.Context()
	ver, err := h.Store.TokenVersion(ctx, uid)
	if errors.Is(err, ErrUserNotFound) {
		unauthorized(w, r, "user not found or inactive")
		return
	}
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	if ver != claims.TokenVersion {
		unauthorized(w, r, "token revoked")
		return
	}

	if h.Deny != nil {
		ttl := h.Signer.RefreshTTL()
		if claims.ExpiresAt != nil {
			ttl = claims.ExpiresAt.Time.Sub(h.clock())
		}
		fresh, err := h.Deny.Consume(ctx, claims.ID, ttl)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if !fresh {
			logging.Ctx(ctx).Warn().Int64("user_id", uid).Str("jti", claims.ID).Msg("refresh token reuse")
			unauthorized(w, r, "token is blacklisted")
			return
		}
	}

	pair, err := h.issue(uid, ver)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *Handler) issue(userID int64, tokenVersion int) (TokenPair, error) {
	sub := strconv.FormatInt(userID, 10)
	access, _, err := h.Signer.SignAccess(sub, tokenVersion)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := h.Signer.SignRefresh(sub, tokenVersion)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// burnHash spends one verification on unknown usernames so response time
// does not reveal which usernames exist.
func (h *Handler) burnHash(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hasher.Hash("not-a-real-password")
	})
	if h.dummy != "" {
		_, _, _ = h.Hasher.Verify(plain, h.dummy)
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", detail)
}
