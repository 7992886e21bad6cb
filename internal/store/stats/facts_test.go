package statsstore

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogReadsAllFacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, publication_date, page_count, language FROM books`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "publication_date", "page_count", "language"}).
			AddRow(1, "Pedro Páramo", time.Date(1955, 3, 19, 0, 0, 0, 0, time.UTC), 124, "es").
			AddRow(2, "Untitled", nil, nil, "other"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, last_name, nationality FROM authors`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "nationality"}).
			AddRow(1, "Juan", "Rulfo", "Mexican"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT author_id, book_id FROM book_authors`)).
		WillReturnRows(sqlmock.NewRows([]string{"author_id", "book_id"}).AddRow(1, 1))
	mock.ExpectCommit()

	c, err := New(db).Catalog(t.Context())
	require.NoError(t, err)
	require.Len(t, c.Books, 2)
	assert.Equal(t, 124, *c.Books[0].PageCount)
	assert.Equal(t, 1950, c.Books[0].PublicationDate.Decade())
	assert.Nil(t, c.Books[1].PublicationDate)
	assert.Len(t, c.Authors, 1)
	assert.Equal(t, int64(1), c.Links[0].BookID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM authors WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "nationality"}))

	_, _, err = New(db).Author(t.Context(), 42)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorBooks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM authors WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "nationality"}).AddRow(1, "Juan", "Rulfo", "Mexican"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ba.author_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "publication_date", "page_count", "language"}).
			AddRow(1, "Pedro Páramo", nil, 124, "es"))

	a, bs, err := New(db).Author(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Rulfo", a.LastName)
	require.Len(t, bs, 1)
	assert.Equal(t, "es", bs[0].Language)
	assert.NoError(t, mock.ExpectationsWereMet())
}
