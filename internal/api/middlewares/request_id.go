package middlewares

import (
	"context"
	"net/http"
	"regexp"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/google/uuid"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUserID
)

const HeaderRequestID = "X-Request-ID"

var ridRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// RequestID accepts a well-formed inbound X-Request-ID or generates one, and
// tags the request logger with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if !ridRe.MatchString(rid) {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, rid)
		ctx = logging.WithRequestID(ctx, rid)
		r = r.WithContext(ctx)
		r.Header.Set(HeaderRequestID, rid)
		w.Header().Set(HeaderRequestID, rid)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID returns the id set by RequestID, falling back to the header.
func GetRequestID(r *http.Request) string {
	if v, _ := r.Context().Value(ctxKeyRequestID).(string); v != "" {
		return v
	}
	return r.Header.Get(HeaderRequestID)
}
