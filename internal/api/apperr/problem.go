// Package apperr writes RFC 7807 problem documents.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/validate"
)

type FieldError = validate.FieldError

type Problem struct {
	Type        string       `json:"type,omitempty"`   // RFC7807 type URI
	Title       string       `json:"title"`            // short summary
	Status      int          `json:"status"`           // HTTP status code
	Detail      string       `json:"detail,omitempty"` // human details
	Instance    string       `json:"instance,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.RequestID == "" {
		p.RequestID = w.Header().Get("X-Request-ID")
	}
	if p.RequestID == "" && r != nil {
		p.RequestID = r.Header.Get("X-Request-ID")
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteStatus writes a problem with just status, title and detail.
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	Write(w, r, Problem{Status: status, Title: title, Detail: detail})
}

// Invalid writes a 400 listing every field error.
func Invalid(w http.ResponseWriter, r *http.Request, fe validate.Errors) {
	Write(w, r, Problem{
		Status:      http.StatusBadRequest,
		Title:       "Bad Request",
		Detail:      "one or more fields are invalid",
		FieldErrors: fe,
	})
}

// Handle maps err to a problem: field errors to 400, notFound to 404,
// PostgreSQL errors by SQLSTATE, anything else to a logged 500.
func Handle(w http.ResponseWriter, r *http.Request, err error, notFound ...error) {
	if fe, ok := validate.Fields(err); ok {
		Invalid(w, r, fe)
		return
	}
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			WriteStatus(w, r, http.StatusNotFound, "Not Found", nf.Error())
			return
		}
	}
	if errors.Is(err, validate.ErrInvalid) {
		WriteStatus(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if p, ok := FromPG(err); ok {
		if p.Status >= 500 {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("database error")
		}
		Write(w, r, p)
		return
	}
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		WriteStatus(w, r, http.StatusServiceUnavailable, "Request Cancelled", "")
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
}
