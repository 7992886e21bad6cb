// Package validate holds request validation helpers shared by the query layer,
// the stores and the HTTP handlers.
package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var ErrInvalid = errors.New("invalid")

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors is a list of field errors. It unwraps to ErrInvalid.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "invalid input"
	}
	parts := make([]string, 0, len(e))
	for _, f := range e {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error { return ErrInvalid }

// Add appends a field error.
func (e *Errors) Add(field, code, msg string) {
	*e = append(*e, FieldError{Field: field, Code: code, Message: msg})
}

// Err returns nil when no errors were collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Fields extracts field errors from err, if any.
func Fields(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// RequireBounded trims and ensures length bounds.
func RequireBounded(name, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n < min || n > max {
		return "", Errors{{Field: name, Code: "length", Message: name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters"}}
	}
	return s, nil
}

var (
	v     *validator.Validate
	vOnce sync.Once
)

func instance() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct runs `validate` tags on s and returns Errors keyed by JSON field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Field: fe.Field(), Code: fe.Tag(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Int || fe.Kind() == reflect.Int64 {
			return "must be at least " + fe.Param()
		}
		return "must be at least " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "dive":
		return "invalid item"
	default:
		return "invalid value"
	}
}
