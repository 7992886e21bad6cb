package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// requestInfo is filled in by inner handlers and read back once the request completes.
type requestInfo struct {
	userID int64
}

const ctxKeyInfo ctxKey = 100

// AccessLog emits one log event per request and records request metrics
// labelled by the matched route pattern. It must wrap the mux directly so the
// pattern set during routing is visible here.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		info := &requestInfo{}
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyInfo, info))

		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		d := time.Since(start)
		metrics.RecordRequest(r.Method, r.Pattern, sw.status, d)

		ev := logging.Ctx(r.Context()).Info()
		if sw.status >= 500 {
			ev = logging.Ctx(r.Context()).Error()
		}
		if info.userID != 0 {
			ev = ev.Int64("user_id", info.userID)
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int64("bytes", sw.bytes).
			Dur("duration", d).
			Msg("access")
	})
}
