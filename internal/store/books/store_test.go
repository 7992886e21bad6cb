package books

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/validate"
)

var (
	bookCols       = []string{"id", "title", "publication_date", "description", "page_count", "language", "created_at", "updated_at"}
	bookAuthorCols = []string{"book_id", "id", "first_name", "last_name", "birth_date", "nationality", "biography", "created_at", "updated_at", "books_count"}
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func ids(v ...int64) *[]int64 { return &v }

func TestListBooksAttachesAuthors(t *testing.T) {
	s, mock := newStore(t)
	ts := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM books b WHERE b.language = $1 AND EXISTS`)).
		WithArgs("es", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY b.title ASC, b.id ASC LIMIT $3 OFFSET $4`)).
		WithArgs("es", int64(1), 20, 0).
		WillReturnRows(sqlmock.NewRows(bookCols).
			AddRow(10, "Cien años de soledad", time.Date(1967, 5, 30, 0, 0, 0, 0, time.UTC), "", 417, "es", ts, ts).
			AddRow(11, "El otoño del patriarca", nil, "", nil, "es", ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ba.book_id IN ($1, $2)`)).
		WithArgs(int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows(bookAuthorCols).
			AddRow(10, 1, "Gabriel", "García Márquez", nil, "Colombian", "", ts, ts, 2).
			AddRow(11, 1, "Gabriel", "García Márquez", nil, "Colombian", "", ts, ts, 2))

	p, err := query.Parse(query.Books, map[string][]string{"language": {"es"}, "authors__id": {"1"}})
	require.NoError(t, err)

	got, total, err := s.List(t.Context(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Spanish", got[0].LanguageDisplay)
	assert.Equal(t, 417, *got[0].PageCount)
	assert.Nil(t, got[1].PageCount)
	assert.Equal(t, 1, got[1].AuthorsCount)
	assert.Equal(t, "Gabriel García Márquez", got[1].Authors[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookRejectsUnknownAuthors(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM authors WHERE id IN ($1, $2)`)).
		WithArgs(int64(1), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	_, err := s.Create(t.Context(), Input{Title: "Ficciones", AuthorIDs: ids(1, 99, 1)})
	fe, ok := validate.Fields(err)
	require.True(t, ok)
	require.Len(t, fe, 1)
	assert.Equal(t, "authors_ids", fe[0].Field)
	assert.Contains(t, fe[0].Message, `"99"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookLinksAuthors(t *testing.T) {
	s, mock := newStore(t)
	ts := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM authors WHERE id IN ($1, $2)`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO books (title, publication_date, description, page_count, language)`)).
		WithArgs("Ficciones", nil, "", 224, "en").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2), ($1, $3)`)).
		WithArgs(int64(30), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.id = $1`)).
		WithArgs(int64(30)).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(30, "Ficciones", nil, "", 224, "en", ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ba.book_id IN ($1)`)).
		WithArgs(int64(30)).
		WillReturnRows(sqlmock.NewRows(bookAuthorCols).
			AddRow(30, 1, "Jorge Luis", "Borges", nil, "Argentine", "", ts, ts, 1).
			AddRow(30, 2, "Adolfo", "Bioy Casares", nil, "Argentine", "", ts, ts, 1))

	pages := 224
	b, err := s.Create(t.Context(), Input{Title: " Ficciones ", PageCount: &pages, AuthorIDs: ids(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, "English", b.LanguageDisplay)
	assert.Equal(t, 2, b.AuthorsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookValidation(t *testing.T) {
	s, mock := newStore(t)
	neg := -5

	_, err := s.Create(t.Context(), Input{Title: "", PageCount: &neg, Language: "de"})
	fe, ok := validate.Fields(err)
	require.True(t, ok)
	var fields []string
	for _, f := range fe {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "page_count", "language"}, fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookPageCountFitsColumn(t *testing.T) {
	s, mock := newStore(t)
	huge := 3000000000

	_, err := s.Create(t.Context(), Input{Title: "x", PageCount: &huge})
	fe, ok := validate.Fields(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, fe, 1)
	assert.Equal(t, "page_count", fe[0].Field)
	assert.Equal(t, "lte", fe[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchBookClearsAuthors(t *testing.T) {
	s, mock := newStore(t)
	ts := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM books WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"title", "publication_date", "description", "page_count", "language"}).
			AddRow("Rayuela", nil, "", 600, "es"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE books`)).
		WithArgs("Rayuela", nil, "", 600, "es", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM book_authors WHERE book_id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(5, "Rayuela", nil, "", 600, "es", ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ba.book_id IN ($1)`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookAuthorCols))

	b, err := s.Patch(t.Context(), 5, Patch{AuthorIDs: models.Field[[]int64]{Set: true, V: []int64{}}})
	require.NoError(t, err)
	assert.Empty(t, b.Authors)
	assert.Equal(t, 0, b.AuthorsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceBookNotFound(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE books`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.Replace(t.Context(), 404, Input{Title: "Nada"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBook(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM books WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(t.Context(), 8), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
