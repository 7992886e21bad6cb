package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/5w1tchy/library-api/internal/store/books"
)

type AuthorCreator interface {
	Create(ctx context.Context, in authors.Input) (models.Author, error)
}

type BookCreator interface {
	Create(ctx context.Context, in books.Input) (models.Book, error)
}

// Loader writes a dataset through the regular stores so the same
// sanitization and validation apply as for API writes.
type Loader struct {
	Authors AuthorCreator
	Books   BookCreator
	Counts  Counter
}

func (l *Loader) Load(ctx context.Context, ds Dataset) (Summary, error) {
	log := logging.Ctx(ctx)
	var sum Summary

	ids := make([]int64, len(ds.Authors))
	for i, a := range ds.Authors {
		created, err := l.Authors.Create(ctx, authors.Input{
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			BirthDate:   a.BirthDate,
			Nationality: a.Nationality,
			Biography:   a.Biography,
		})
		if err != nil {
			return sum, fmt.Errorf("author %d (%s): %w", i, models.FullName(a.FirstName, a.LastName), err)
		}
		ids[i] = created.ID
		sum.AuthorsCreated++
	}
	log.Info().Int("count", sum.AuthorsCreated).Msg("authors created")

	for i, b := range ds.Books {
		refs := make([]int64, 0, len(b.Authors))
		for _, ref := range b.Authors {
			if ref < 0 || ref >= len(ids) {
				return sum, fmt.Errorf("book %d (%q): author index %d out of range", i, b.Title, ref)
			}
			refs = append(refs, ids[ref])
		}
		if _, err := l.Books.Create(ctx, books.Input{
			Title:           b.Title,
			PublicationDate: b.PublicationDate,
			Description:     b.Description,
			PageCount:       b.PageCount,
			Language:        b.Language,
			AuthorIDs:       &refs,
		}); err != nil {
			return sum, fmt.Errorf("book %d (%q): %w", i, b.Title, err)
		}
		sum.BooksCreated++
	}
	log.Info().Int("count", sum.BooksCreated).Msg("books created")

	if l.Counts != nil {
		a, b, orphans, err := l.Counts.Counts(ctx)
		if err != nil {
			return sum, err
		}
		sum.TotalAuthors, sum.TotalBooks, sum.BooksWithoutAuthors = a, b, orphans
	}
	return sum, nil
}

// SQLCounter reads catalog totals straight from the database.
type SQLCounter struct {
	DB *sql.DB
}

func (c SQLCounter) Counts(ctx context.Context) (int, int, int, error) {
	var a, b, orphans int
	err := c.DB.QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM authors),
       (SELECT COUNT(*) FROM books),
       (SELECT COUNT(*) FROM books b WHERE NOT EXISTS (
            SELECT 1 FROM book_authors ba WHERE ba.book_id = b.id))`).Scan(&a, &b, &orphans)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("catalog counts: %w", err)
	}
	return a, b, orphans, nil
}
