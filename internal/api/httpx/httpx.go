// Package httpx has JSON response and request helpers for handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/validate"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw writes an already encoded JSON document.
func WriteRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

type single struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type page struct {
	Status     string `json:"status"`
	Data       any    `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, single{Status: "success", Data: data})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, single{Status: "success", Data: data})
}

// Page writes the list envelope.
func Page(w http.ResponseWriter, data any, total, pageNo, pageSize, totalPages int) {
	WriteJSON(w, http.StatusOK, page{
		Status:     "success",
		Data:       data,
		Total:      total,
		Page:       pageNo,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads one JSON object from the body. Syntax and type errors
// come back as validate.Errors so they render as 400 field errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return validate.Errors{{Field: "body", Code: "too_large", Message: "request body too large"}}
		case errors.As(err, &typeErr) && typeErr.Field != "":
			msg := "expected " + typeErr.Type.String()
			if typeErr.Type == models.DateType {
				msg = "enter a valid date (YYYY-MM-DD)"
			}
			return validate.Errors{{Field: typeErr.Field, Code: "invalid", Message: msg}}
		case errors.Is(err, io.EOF):
			return validate.Errors{{Field: "body", Code: "required", Message: "request body is empty"}}
		default:
			return validate.Errors{{Field: "body", Code: "parse_error", Message: "JSON parse error: " + err.Error()}}
		}
	}
	if dec.More() {
		return validate.Errors{{Field: "body", Code: "parse_error", Message: "body must contain a single JSON object"}}
	}
	return nil
}

// PathID parses a positive integer path value.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	return id, err == nil && id > 0
}
