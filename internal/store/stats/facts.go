// Package statsstore fetches the fact rows the statistics engine works on.
package statsstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/library-api/internal/stats"
)

var ErrAuthorNotFound = errors.New("author not found")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Catalog reads every book, author and link in one REPEATABLE READ snapshot.
func (s *Store) Catalog(ctx context.Context) (stats.Catalog, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return stats.Catalog{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	var c stats.Catalog
	if c.Books, err = books(ctx, tx, `
SELECT id, title, publication_date, page_count, language FROM books`); err != nil {
		return stats.Catalog{}, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, first_name, last_name, nationality FROM authors`)
	if err != nil {
		return stats.Catalog{}, fmt.Errorf("author facts: %w", err)
	}
	for rows.Next() {
		var a stats.AuthorFact
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Nationality); err != nil {
			rows.Close()
			return stats.Catalog{}, err
		}
		c.Authors = append(c.Authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats.Catalog{}, err
	}

	rows, err = tx.QueryContext(ctx, `SELECT author_id, book_id FROM book_authors`)
	if err != nil {
		return stats.Catalog{}, fmt.Errorf("link facts: %w", err)
	}
	for rows.Next() {
		var l stats.Link
		if err := rows.Scan(&l.AuthorID, &l.BookID); err != nil {
			rows.Close()
			return stats.Catalog{}, err
		}
		c.Links = append(c.Links, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats.Catalog{}, err
	}

	return c, tx.Commit()
}

// Author returns one author and its books, or ErrAuthorNotFound.
func (s *Store) Author(ctx context.Context, id int64) (stats.AuthorFact, []stats.BookFact, error) {
	var a stats.AuthorFact
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, nationality FROM authors WHERE id = $1`, id,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Nationality)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.AuthorFact{}, nil, ErrAuthorNotFound
	}
	if err != nil {
		return stats.AuthorFact{}, nil, fmt.Errorf("author fact: %w", err)
	}

	bs, err := books(ctx, s.db, `
SELECT b.id, b.title, b.publication_date, b.page_count, b.language
FROM books b
JOIN book_authors ba ON ba.book_id = b.id
WHERE ba.author_id = $1`, id)
	if err != nil {
		return stats.AuthorFact{}, nil, err
	}
	return a, bs, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func books(ctx context.Context, q queryer, query string, args ...any) ([]stats.BookFact, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("book facts: %w", err)
	}
	defer rows.Close()

	var out []stats.BookFact
	for rows.Next() {
		var b stats.BookFact
		if err := rows.Scan(&b.ID, &b.Title, &b.PublicationDate, &b.PageCount, &b.Language); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
