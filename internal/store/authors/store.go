package authors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

const selectAuthor = `
SELECT a.id, a.first_name, a.last_name, a.birth_date, a.nationality, a.biography,
       a.created_at, a.updated_at,
       (SELECT COUNT(*) FROM book_authors ba WHERE ba.author_id = a.id) AS books_count
FROM authors a`

type scanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row scanner) (models.Author, error) {
	var a models.Author
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.BirthDate, &a.Nationality, &a.Biography,
		&a.CreatedAt, &a.UpdatedAt, &a.BooksCount)
	a.FullName = models.FullName(a.FirstName, a.LastName)
	return a, err
}

// List returns one page of authors and the total matching count.
func (s *Store) List(ctx context.Context, p query.ListParams) ([]models.Author, int, error) {
	var b query.Builder
	where := b.Where(query.Authors, p)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors a "+where, b.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	q := selectAuthor + "\n" + where + "\n" + b.OrderBy(query.Authors, p) + "\n" + b.Page(p)
	rows, err := s.db.QueryContext(ctx, q, b.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	out := []models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Get returns the author with up to ten of its books.
func (s *Store) Get(ctx context.Context, id int64) (models.AuthorDetail, error) {
	a, err := s.get(ctx, s.db, id)
	if err != nil {
		return models.AuthorDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT b.id, b.title, b.publication_date, b.language
FROM books b
JOIN book_authors ba ON ba.book_id = b.id
WHERE ba.author_id = $1
ORDER BY b.title, b.id
LIMIT $2`, id, detailBooks)
	if err != nil {
		return models.AuthorDetail{}, fmt.Errorf("author books: %w", err)
	}
	defer rows.Close()

	d := models.AuthorDetail{Author: a, Books: []models.AuthorBook{}}
	for rows.Next() {
		var ab models.AuthorBook
		if err := rows.Scan(&ab.ID, &ab.Title, &ab.PublicationDate, &ab.Language); err != nil {
			return models.AuthorDetail{}, err
		}
		ab.Language = models.LanguageDisplay(ab.Language)
		d.Books = append(d.Books, ab)
	}
	return d, rows.Err()
}

func (s *Store) get(ctx context.Context, q dbx.DBTX, id int64) (models.Author, error) {
	a, err := scanAuthor(q.QueryRowContext(ctx, selectAuthor+"\nWHERE a.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, ErrNotFound
	}
	if err != nil {
		return models.Author{}, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

func (s *Store) Create(ctx context.Context, in Input) (models.Author, error) {
	if err := sanitize(&in, s.now()); err != nil {
		return models.Author{}, err
	}

	a := models.Author{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		FullName:    models.FullName(in.FirstName, in.LastName),
		BirthDate:   in.BirthDate,
		Nationality: in.Nationality,
		Biography:   in.Biography,
	}
	err := s.db.QueryRowContext(ctx, `
INSERT INTO authors (first_name, last_name, birth_date, nationality, biography)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`,
		in.FirstName, in.LastName, in.BirthDate, in.Nationality, in.Biography,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Author{}, fmt.Errorf("insert author: %w", err)
	}
	return a, nil
}

// Replace overwrites every writable field.
func (s *Store) Replace(ctx context.Context, id int64, in Input) (models.Author, error) {
	if err := sanitize(&in, s.now()); err != nil {
		return models.Author{}, err
	}
	if err := s.update(ctx, s.db, id, in); err != nil {
		return models.Author{}, err
	}
	return s.get(ctx, s.db, id)
}

// Patch applies p over the stored row inside one transaction.
func (s *Store) Patch(ctx context.Context, id int64, p Patch) (models.Author, error) {
	var out models.Author
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		var cur Input
		err := tx.QueryRowContext(ctx, `
SELECT first_name, last_name, birth_date, nationality, biography
FROM authors WHERE id = $1 FOR UPDATE`, id,
		).Scan(&cur.FirstName, &cur.LastName, &cur.BirthDate, &cur.Nationality, &cur.Biography)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock author: %w", err)
		}

		next, err := p.apply(cur)
		if err != nil {
			return err
		}
		if err := sanitize(&next, s.now()); err != nil {
			return err
		}
		if err := s.update(ctx, tx, id, next); err != nil {
			return err
		}
		out, err = s.get(ctx, tx, id)
		return err
	})
	return out, err
}

func (s *Store) update(ctx context.Context, q dbx.DBTX, id int64, in Input) error {
	res, err := q.ExecContext(ctx, `
UPDATE authors
SET first_name = $1, last_name = $2, birth_date = $3, nationality = $4, biography = $5, updated_at = now()
WHERE id = $6`,
		in.FirstName, in.LastName, in.BirthDate, in.Nationality, in.Biography, id)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the author and its book links; the books stay.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
