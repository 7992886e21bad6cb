package books

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/library-api/internal/cache"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/stats"
	storebooks "github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	books    map[int64]models.Book
	lastList query.ListParams
	lastIn   storebooks.Input
}

func (f *fakeStore) List(_ context.Context, p query.ListParams) ([]models.Book, int, error) {
	f.lastList = p
	return nil, 0, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (models.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return models.Book{}, storebooks.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) Create(_ context.Context, in storebooks.Input) (models.Book, error) {
	f.lastIn = in
	if in.AuthorIDs != nil {
		for _, id := range *in.AuthorIDs {
			if id == 404 {
				return models.Book{}, validate.Errors{{Field: "authors_ids", Code: "does_not_exist", Message: `invalid pk "404" - object does not exist`}}
			}
		}
	}
	b := models.Book{ID: 7, Title: in.Title, Language: "en", LanguageDisplay: "English", Authors: []models.Author{}}
	f.books[b.ID] = b
	return b, nil
}

func (f *fakeStore) Replace(_ context.Context, id int64, in storebooks.Input) (models.Book, error) {
	f.lastIn = in
	if _, ok := f.books[id]; !ok {
		return models.Book{}, storebooks.ErrNotFound
	}
	return f.books[id], nil
}

func (f *fakeStore) Patch(_ context.Context, id int64, _ storebooks.Patch) (models.Book, error) {
	if _, ok := f.books[id]; !ok {
		return models.Book{}, storebooks.ErrNotFound
	}
	return f.books[id], nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.books[id]; !ok {
		return storebooks.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

type fakeFacts struct {
	catalog stats.Catalog
	err     error
	calls   int
}

func (f *fakeFacts) Catalog(context.Context) (stats.Catalog, error) {
	f.calls++
	return f.catalog, f.err
}

type countingCache struct {
	*cache.Stats
	bumps int
}

func (c *countingCache) Bump(ctx context.Context) error {
	c.bumps++
	return c.Stats.Bump(ctx)
}

func date(y int) *models.Date {
	d := models.NewDate(y, time.June, 1)
	return &d
}

func setup() (*http.ServeMux, *Handler, *fakeStore, *fakeFacts, *countingCache) {
	pages := 300
	st := &fakeStore{books: map[int64]models.Book{1: {ID: 1, Title: "Ficciones"}}}
	facts := &fakeFacts{catalog: stats.Catalog{
		Books: []stats.BookFact{
			{ID: 1, Title: "Ficciones", PublicationDate: date(1944), PageCount: &pages, Language: "es"},
			{ID: 2, Title: "Recent", PublicationDate: date(2020), Language: "en"},
		},
		Authors: []stats.AuthorFact{{ID: 1, FirstName: "Jorge Luis", LastName: "Borges"}},
		Links:   []stats.Link{{AuthorID: 1, BookID: 1}, {AuthorID: 1, BookID: 2}},
	}}
	c := &countingCache{Stats: cache.NewStats(nil, time.Minute)}
	h := NewHandler(st, facts, c)
	h.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	mux := http.NewServeMux()
	h.Register(mux, func(next http.Handler) http.Handler { return next })
	return mux, h, st, facts, c
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestListEmptyPage(t *testing.T) {
	mux, _, st, _, _ := setup()

	rec := do(mux, "GET", "/api/books/?language=es&authors__id=3&page=4", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success","data":[],"total":0,"page":4,"page_size":20,"total_pages":1}`, rec.Body.String())
	assert.Len(t, st.lastList.Filters, 2)
}

func TestListRejectsBadFilters(t *testing.T) {
	mux, _, _, _, _ := setup()

	rec := do(mux, "GET", "/api/books/?language=xx&authors__id=abc&page_size=1000", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	for _, field := range []string{"language", "authors__id", "page_size"} {
		assert.Contains(t, rec.Body.String(), `"field":"`+field+`"`)
	}
}

func TestCreate(t *testing.T) {
	mux, _, st, _, c := setup()

	rec := do(mux, "POST", "/api/books/", `{"title":"El Aleph","authors_ids":[1]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, st.lastIn.AuthorIDs)
	assert.Equal(t, []int64{1}, *st.lastIn.AuthorIDs)
	assert.Equal(t, 1, c.bumps)

	rec = do(mux, "POST", "/api/books/", `{"title":"Ghost","authors_ids":[404]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "authors_ids")

	rec = do(mux, "POST", "/api/books/", `{"title":"Dune","page_count":"many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "page_count")
	assert.Equal(t, 1, c.bumps)
}

func TestReplaceLeavesLinksWhenOmitted(t *testing.T) {
	mux, _, st, _, _ := setup()

	rec := do(mux, "PUT", "/api/books/1/", `{"title":"Ficciones"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, st.lastIn.AuthorIDs)
}

func TestItemNotFound(t *testing.T) {
	mux, _, _, _, _ := setup()

	for _, tc := range []struct{ method, body string }{
		{"GET", ""}, {"PUT", `{"title":"x"}`}, {"PATCH", `{}`}, {"DELETE", ""},
	} {
		rec := do(mux, tc.method, "/api/books/999/", tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method)
	}
}

func TestDelete(t *testing.T) {
	mux, _, st, _, c := setup()
	rec := do(mux, "DELETE", "/api/books/1/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, st.books, int64(1))
	assert.Equal(t, 1, c.bumps)
}

func TestStatistics(t *testing.T) {
	mux, _, _, _, _ := setup()

	rec := do(mux, "GET", "/api/books/statistics/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var g stats.GlobalReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, 2, g.General.TotalBooks)
	require.Len(t, g.MostProlificAuthors, 1)
	assert.Equal(t, 2, g.MostProlificAuthors[0].BooksCount)
}

func TestStatisticsStoreError(t *testing.T) {
	mux, _, _, facts, _ := setup()
	facts.err = errors.New("connection reset")

	rec := do(mux, "GET", "/api/books/statistics/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestTrends(t *testing.T) {
	mux, _, _, _, _ := setup()

	rec := do(mux, "GET", "/api/books/trends/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tr stats.TrendsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, stats.BucketDecade, tr.Bucket)
	require.NotEmpty(t, tr.Series)
	assert.Equal(t, 1940, tr.Series[0].Period)
	assert.Equal(t, 2020, tr.Series[len(tr.Series)-1].Period)
	require.Len(t, tr.EmergingAuthors, 1)
	assert.Equal(t, 1, tr.EmergingAuthors[0].RecentBooksCount)

	rec = do(mux, "GET", "/api/books/trends/?bucket=year", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Len(t, tr.Series, 2020-1944+1)
}

func TestTrendsRejectsBucket(t *testing.T) {
	mux, _, _, facts, _ := setup()

	rec := do(mux, "GET", "/api/books/trends/?bucket=century", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"bucket"`)
	assert.Zero(t, facts.calls)
}

func TestWarmComputesEveryCatalogReport(t *testing.T) {
	_, h, _, facts, _ := setup()

	require.NoError(t, h.Warm(t.Context()))
	// global, then trends per bucket
	assert.Equal(t, 3, facts.calls)

	facts.err = errors.New("db down")
	assert.Error(t, h.Warm(t.Context()))
}
