package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Export reads the whole catalog back into dataset form, authors and books
// ordered by id.
func Export(ctx context.Context, db *sql.DB) (Dataset, error) {
	ds := Dataset{Authors: []AuthorRecord{}, Books: []BookRecord{}}

	rows, err := db.QueryContext(ctx, `
SELECT id, first_name, last_name, birth_date, nationality, biography
FROM authors ORDER BY id`)
	if err != nil {
		return ds, fmt.Errorf("export authors: %w", err)
	}
	index := map[int64]int{}
	for rows.Next() {
		var id int64
		var a AuthorRecord
		if err := rows.Scan(&id, &a.FirstName, &a.LastName, &a.BirthDate, &a.Nationality, &a.Biography); err != nil {
			rows.Close()
			return ds, err
		}
		index[id] = len(ds.Authors)
		ds.Authors = append(ds.Authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = db.QueryContext(ctx, `
SELECT b.id, b.title, b.publication_date, b.description, b.page_count, b.language,
       COALESCE(array_to_string(ARRAY(
           SELECT ba.author_id FROM book_authors ba WHERE ba.book_id = b.id ORDER BY ba.author_id), ','), '')
FROM books b ORDER BY b.id`)
	if err != nil {
		return ds, fmt.Errorf("export books: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var refs string
		var b BookRecord
		if err := rows.Scan(&id, &b.Title, &b.PublicationDate, &b.Description, &b.PageCount, &b.Language, &refs); err != nil {
			return ds, err
		}
		b.Authors, err = resolve(refs, index)
		if err != nil {
			return ds, fmt.Errorf("book %d: %w", id, err)
		}
		ds.Books = append(ds.Books, b)
	}
	return ds, rows.Err()
}

func resolve(csv string, index map[int64]int) ([]int, error) {
	out := []int{}
	if csv == "" {
		return out, nil
	}
	for _, part := range strings.Split(csv, ",") {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("author ref %q: %w", part, err)
		}
		pos, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("unknown author %d", id)
		}
		out = append(out, pos)
	}
	return out, nil
}
