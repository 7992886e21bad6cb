package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/google/uuid"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mw.GetRequestID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	mw.RequestID(handler).ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	if rid == "" || rid != seen {
		t.Fatalf("response id %q, handler saw %q", rid, seen)
	}
	if _, err := uuid.Parse(rid); err != nil {
		t.Errorf("generated id is not a uuid: %v", err)
	}
}

func TestRequestID_UsesProvidedID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "custom-request-id")
	rec := httptest.NewRecorder()
	mw.RequestID(handler).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "custom-request-id" {
		t.Errorf("expected custom-request-id, got %s", got)
	}
}

func TestRequestID_RejectsInvalidID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "invalid@#$%id")
	rec := httptest.NewRecorder()
	mw.RequestID(handler).ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	if rid == "invalid@#$%id" || rid == "" {
		t.Errorf("expected a fresh id, got %q", rid)
	}
}
