package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/store/dbx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectBook = `
SELECT b.id, b.title, b.publication_date, b.description, b.page_count, b.language,
       b.created_at, b.updated_at
FROM books b`

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.PublicationDate, &b.Description, &b.PageCount, &b.Language,
		&b.CreatedAt, &b.UpdatedAt)
	b.LanguageDisplay = models.LanguageDisplay(b.Language)
	b.Authors = []models.Author{}
	return b, err
}

// List returns one page of books with their authors, and the total matching count.
func (s *Store) List(ctx context.Context, p query.ListParams) ([]models.Book, int, error) {
	var qb query.Builder
	where := qb.Where(query.Books, p)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books b "+where, qb.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	q := selectBook + "\n" + where + "\n" + qb.OrderBy(query.Books, p) + "\n" + qb.Page(p)
	rows, err := s.db.QueryContext(ctx, q, qb.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	out := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		out = append(out, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachAuthors(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, selectBook+"\nWHERE b.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("get book: %w", err)
	}
	list := []models.Book{b}
	if err := s.attachAuthors(ctx, list); err != nil {
		return models.Book{}, err
	}
	return list[0], nil
}

// attachAuthors loads the author set of every book in one query.
func (s *Store) attachAuthors(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	idx := make(map[int64]int, len(books))
	for i, b := range books {
		ids[i] = b.ID
		idx[b.ID] = i
	}

	ph, args := dbx.In(1, ids)
	rows, err := s.db.QueryContext(ctx, `
SELECT ba.book_id, a.id, a.first_name, a.last_name, a.birth_date, a.nationality, a.biography,
       a.created_at, a.updated_at,
       (SELECT COUNT(*) FROM book_authors x WHERE x.author_id = a.id) AS books_count
FROM book_authors ba
JOIN authors a ON a.id = ba.author_id
WHERE ba.book_id IN (`+ph+`)
ORDER BY ba.book_id, a.last_name, a.first_name, a.id`, args...)
	if err != nil {
		return fmt.Errorf("book authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var a models.Author
		if err := rows.Scan(&bookID, &a.ID, &a.FirstName, &a.LastName, &a.BirthDate, &a.Nationality,
			&a.Biography, &a.CreatedAt, &a.UpdatedAt, &a.BooksCount); err != nil {
			return err
		}
		a.FullName = models.FullName(a.FirstName, a.LastName)
		if i, ok := idx[bookID]; ok {
			books[i].Authors = append(books[i].Authors, a)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range books {
		books[i].AuthorsCount = len(books[i].Authors)
	}
	return nil
}

// Create inserts the book and its author links in one transaction.
func (s *Store) Create(ctx context.Context, in Input) (models.Book, error) {
	if err := sanitize(&in); err != nil {
		return models.Book{}, err
	}

	var id int64
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if in.AuthorIDs != nil {
			if err := checkAuthors(ctx, tx, *in.AuthorIDs); err != nil {
				return err
			}
		}
		err := tx.QueryRowContext(ctx, `
INSERT INTO books (title, publication_date, description, page_count, language)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
			in.Title, in.PublicationDate, in.Description, in.PageCount, in.Language,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		if in.AuthorIDs != nil {
			return link(ctx, tx, id, *in.AuthorIDs, false)
		}
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Replace(ctx context.Context, id int64, in Input) (models.Book, error) {
	if err := sanitize(&in); err != nil {
		return models.Book{}, err
	}
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.write(ctx, tx, id, in)
	})
	if err != nil {
		return models.Book{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Patch(ctx context.Context, id int64, p Patch) (models.Book, error) {
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		var cur Input
		err := tx.QueryRowContext(ctx, `
SELECT title, publication_date, description, page_count, language
FROM books WHERE id = $1 FOR UPDATE`, id,
		).Scan(&cur.Title, &cur.PublicationDate, &cur.Description, &cur.PageCount, &cur.Language)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock book: %w", err)
		}

		next, err := p.apply(cur)
		if err != nil {
			return err
		}
		if err := sanitize(&next); err != nil {
			return err
		}
		return s.write(ctx, tx, id, next)
	})
	if err != nil {
		return models.Book{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) write(ctx context.Context, tx *sql.Tx, id int64, in Input) error {
	if in.AuthorIDs != nil {
		if err := checkAuthors(ctx, tx, *in.AuthorIDs); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `
UPDATE books
SET title = $1, publication_date = $2, description = $3, page_count = $4, language = $5, updated_at = now()
WHERE id = $6`,
		in.Title, in.PublicationDate, in.Description, in.PageCount, in.Language, id)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if in.AuthorIDs != nil {
		return link(ctx, tx, id, *in.AuthorIDs, true)
	}
	return nil
}

// link sets the book's author set to ids.
func link(ctx context.Context, tx *sql.Tx, bookID int64, ids []int64, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, bookID); err != nil {
			return fmt.Errorf("unlink authors: %w", err)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, bookID)
	for i, id := range ids {
		values[i] = "($1, $" + strconv.Itoa(i+2) + ")"
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO book_authors (book_id, author_id) VALUES `+strings.Join(values, ", "), args...)
	if err != nil {
		return fmt.Errorf("link authors: %w", err)
	}
	return nil
}

// Delete removes the book and its author links.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
