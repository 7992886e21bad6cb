package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder accumulates bind arguments while rendering SQL fragments.
type Builder struct {
	Args []any
}

func (b *Builder) bind(v any) string {
	b.Args = append(b.Args, v)
	return "$" + strconv.Itoa(len(b.Args))
}

// Where renders filters and search terms joined with AND, or "" when empty.
func (b *Builder) Where(spec Spec, p ListParams) string {
	var conds []string
	for _, f := range p.Filters {
		conds = append(conds, fmt.Sprintf(f.Def.Cond, b.bind(f.Value)))
	}
	for _, term := range p.Terms {
		ph := b.bind("%" + EscapeLike(term) + "%")
		ors := make([]string, len(spec.SearchCols))
		for i, col := range spec.SearchCols {
			ors[i] = col + ` ILIKE ` + ph + ` ESCAPE '\'`
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

// OrderBy renders the ordering with the id column as final tie-breaker.
func (b *Builder) OrderBy(spec Spec, p ListParams) string {
	parts := make([]string, 0, len(p.Order)+1)
	hasID := false
	for _, o := range p.Order {
		col := spec.Orderable[o.Field]
		if col == spec.IDColumn {
			hasID = true
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if !hasID {
		parts = append(parts, spec.IDColumn+" ASC")
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) Page(p ListParams) string {
	return "LIMIT " + b.bind(p.PageSize) + " OFFSET " + b.bind(p.Offset())
}

// EscapeLike escapes LIKE metacharacters so the term matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
