// Package query turns list request parameters into a validated ListParams
// and renders it as a parameterized SQL fragment. Only allow-listed fields
// reach the SQL text; every value travels as a bind argument.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/validate"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size well inside int64 and Postgres OFFSET.
	MaxPage = math.MaxInt32
)

// Kind says how a filter value is parsed.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindLanguage
	KindID
)

// FilterDef binds a query parameter to a condition. Cond holds one %s
// where the bind placeholder goes.
type FilterDef struct {
	Param string
	Kind  Kind
	Cond  string
}

// Spec is the allow-list for one resource.
type Spec struct {
	Filters      []FilterDef
	SearchCols   []string
	Orderable    map[string]string // public field -> column
	DefaultOrder []Order
	IDColumn     string
}

type Order struct {
	Field string
	Desc  bool
}

type Filter struct {
	Def   FilterDef
	Value any
}

type ListParams struct {
	Filters  []Filter
	Terms    []string
	Order    []Order
	Page     int
	PageSize int
}

func (p ListParams) Offset() int { return (p.Page - 1) * p.PageSize }

// TotalPages is at least 1 so an empty list still reports page 1 of 1.
func (p ListParams) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Parse validates v against spec. Unknown parameters are ignored; every
// malformed value is reported in one validate.Errors.
func Parse(spec Spec, v url.Values) (ListParams, error) {
	var errs validate.Errors
	p := ListParams{Page: 1, PageSize: DefaultPageSize}

	for _, def := range spec.Filters {
		raw, ok := first(v, def.Param)
		if !ok {
			continue
		}
		val, err := parseValue(def.Kind, raw)
		if err != nil {
			errs.Add(def.Param, "invalid", err.Error())
			continue
		}
		p.Filters = append(p.Filters, Filter{Def: def, Value: val})
	}

	if raw, ok := first(v, "search"); ok {
		p.Terms = strings.Fields(raw)
	}

	p.Order = spec.DefaultOrder
	if raw, ok := first(v, "ordering"); ok {
		order, bad := parseOrdering(spec, raw)
		if len(bad) > 0 {
			errs.Add("ordering", "invalid", "unknown ordering field(s): "+strings.Join(bad, ", "))
		} else if len(order) > 0 {
			p.Order = order
		}
	}

	if raw, ok := first(v, "page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPage {
			errs.Add("page", "invalid", "must be an integer between 1 and "+strconv.Itoa(MaxPage))
		} else {
			p.Page = n
		}
	}
	if raw, ok := first(v, "page_size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			errs.Add("page_size", "invalid", "must be an integer between 1 and "+strconv.Itoa(MaxPageSize))
		} else {
			p.PageSize = n
		}
	}

	if err := errs.Err(); err != nil {
		return ListParams{}, err
	}
	return p, nil
}

// first returns the trimmed first value; blank values count as absent.
func first(v url.Values, key string) (string, bool) {
	s := strings.TrimSpace(v.Get(key))
	return s, s != ""
}

type parseError string

func (e parseError) Error() string { return string(e) }

func parseValue(k Kind, raw string) (any, error) {
	switch k {
	case KindDate:
		d, err := models.ParseDate(raw)
		if err != nil {
			return nil, parseError("enter a valid date (YYYY-MM-DD)")
		}
		return d, nil
	case KindLanguage:
		if !models.IsLanguage(raw) {
			return nil, parseError("must be one of: " + strings.Join(models.LanguageCodes, ", "))
		}
		return raw, nil
	case KindID:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return nil, parseError("must be a positive integer")
		}
		return n, nil
	default:
		return raw, nil
	}
}

func parseOrdering(spec Spec, raw string) ([]Order, []string) {
	var out []Order
	var bad []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if _, ok := spec.Orderable[name]; !ok {
			bad = append(bad, part)
			continue
		}
		out = append(out, Order{Field: name, Desc: desc})
	}
	return out, bad
}
