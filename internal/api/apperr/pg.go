package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// constraintField maps catalog constraint names to payload fields.
var constraintField = map[string]string{
	"users_username_key":          "username",
	"book_authors_author_id_fkey": "authors_ids",
	"book_authors_book_id_fkey":   "book_id",
	"book_authors_pkey":           "authors_ids",
	"books_page_count_check":      "page_count",
	"books_language_check":        "language",
	"books_title_check":           "title",
	"authors_first_name_check":    "first_name",
	"authors_last_name_check":     "last_name",
}

// pgRule is how one SQLSTATE renders. An empty code means no field error.
type pgRule struct {
	status    int
	title     string
	code      string
	message   string
	field     string // used when neither constraint nor column names one
	retryable bool
}

var pgRules = map[string]pgRule{
	"23505": {http.StatusConflict, "Conflict", "unique", "value already exists", "resource", false},
	"23503": {http.StatusConflict, "Conflict", "fk", "resource is referenced by other records", "resource", false},
	"23502": {http.StatusBadRequest, "Bad Request", "not_null", "required field is missing", "field", false},
	"23514": {http.StatusUnprocessableEntity, "Unprocessable Entity", "check", "constraint failed", "field", false},
	"22P02": {http.StatusBadRequest, "Bad Request", "invalid", "invalid format", "id", false},
	"22001": {http.StatusBadRequest, "Bad Request", "too_long", "value is too long", "field", false},
	"22003": {http.StatusBadRequest, "Bad Request", "out_of_range", "number is out of range", "field", false},
	"22007": {http.StatusBadRequest, "Bad Request", "invalid", "enter a valid date (YYYY-MM-DD)", "date", false},
	"22008": {http.StatusBadRequest, "Bad Request", "out_of_range", "date is out of range", "date", false},
	"2201W": {http.StatusBadRequest, "Bad Request", "invalid", "page size is out of range", "page_size", false},
	"2201X": {http.StatusBadRequest, "Bad Request", "invalid", "page is out of range", "page", false},
	"40001": {http.StatusConflict, "Conflict", "", "transaction conflict, please retry", "", true},
	"40P01": {http.StatusConflict, "Conflict", "", "deadlock detected, please retry", "", true},
}

// columns that may appear in an error detail, most specific first
var detailColumns = []string{"username", "title", "first_name", "last_name", "page_count", "author_id", "book_id", "id"}

func fieldFor(pg *pgconn.PgError, fallback string) string {
	if f, ok := constraintField[pg.ConstraintName]; ok {
		return f
	}
	if pg.ColumnName != "" {
		return pg.ColumnName
	}
	for _, c := range detailColumns {
		if strings.Contains(pg.Detail, c) {
			return c
		}
	}
	return fallback
}

// FromPG maps a wrapped *pgconn.PgError to a Problem. Unknown codes become
// a bare 500 with no server detail.
func FromPG(err error) (Problem, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return Problem{}, false
	}
	rule, ok := pgRules[pg.Code]
	if !ok {
		return Problem{Title: "Database error", Status: http.StatusInternalServerError}, true
	}
	p := Problem{Title: rule.title, Status: rule.status, Retryable: rule.retryable}
	if rule.code == "" {
		p.Detail = rule.message
		return p, true
	}
	p.FieldErrors = []FieldError{{Field: fieldFor(pg, rule.field), Code: rule.code, Message: rule.message}}
	return p, true
}
