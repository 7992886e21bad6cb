package books

import (
	"context"
	"fmt"
	"strconv"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/dbx"
	"github.com/5w1tchy/library-api/internal/store/shared"
	"github.com/5w1tchy/library-api/internal/validate"
)

func sanitize(in *Input) error {
	in.Title = shared.Line(in.Title)
	in.Description = shared.Text(in.Description)
	if in.Language == "" {
		in.Language = models.DefaultLanguage
	}

	var errs validate.Errors
	if err := validate.Struct(in); err != nil {
		fe, ok := validate.Fields(err)
		if !ok {
			return err
		}
		errs = fe
	}
	if in.AuthorIDs != nil {
		ids := dedup(*in.AuthorIDs)
		for _, id := range ids {
			if id < 1 {
				errs.Add("authors_ids", "invalid", fmt.Sprintf("invalid pk %q - object does not exist", strconv.FormatInt(id, 10)))
			}
		}
		in.AuthorIDs = &ids
	}
	return errs.Err()
}

func (p Patch) apply(cur Input) (Input, error) {
	var errs validate.Errors
	str := func(name string, f models.Field[string], dst *string) {
		if !f.Set {
			return
		}
		if f.Null {
			errs.Add(name, "null", "this field may not be null")
			return
		}
		*dst = f.V
	}
	str("title", p.Title, &cur.Title)
	str("description", p.Description, &cur.Description)
	str("language", p.Language, &cur.Language)
	if p.PublicationDate.Set {
		cur.PublicationDate = p.PublicationDate.V
	}
	if p.PageCount.Set {
		cur.PageCount = p.PageCount.V
	}
	if p.AuthorIDs.Set {
		if p.AuthorIDs.Null {
			errs.Add("authors_ids", "null", "this field may not be null")
		} else {
			ids := p.AuthorIDs.V
			if ids == nil {
				ids = []int64{}
			}
			cur.AuthorIDs = &ids
		}
	}
	return cur, errs.Err()
}

// checkAuthors reports ids that do not resolve to an author.
func checkAuthors(ctx context.Context, q dbx.DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := dbx.In(1, ids)
	rows, err := q.QueryContext(ctx, `SELECT id FROM authors WHERE id IN (`+ph+`)`, args...)
	if err != nil {
		return fmt.Errorf("check authors: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var errs validate.Errors
	for _, id := range ids {
		if !found[id] {
			errs.Add("authors_ids", "does_not_exist", fmt.Sprintf("invalid pk %q - object does not exist", strconv.FormatInt(id, 10)))
		}
	}
	return errs.Err()
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
