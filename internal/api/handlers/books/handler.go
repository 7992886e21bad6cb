// Package books serves /api/books/ and the catalog-wide statistics.
package books

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/library-api/internal/api/apperr"
	"github.com/5w1tchy/library-api/internal/api/httpx"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/stats"
	storebooks "github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/validate"
)

type Store interface {
	List(ctx context.Context, p query.ListParams) ([]models.Book, int, error)
	Get(ctx context.Context, id int64) (models.Book, error)
	Create(ctx context.Context, in storebooks.Input) (models.Book, error)
	Replace(ctx context.Context, id int64, in storebooks.Input) (models.Book, error)
	Patch(ctx context.Context, id int64, p storebooks.Patch) (models.Book, error)
	Delete(ctx context.Context, id int64) error
}

type Facts interface {
	Catalog(ctx context.Context) (stats.Catalog, error)
}

// Cache is the statistics cache; writes bump its version.
type Cache interface {
	Fetch(ctx context.Context, report, key string, load func(context.Context) (any, error)) ([]byte, error)
	Bump(ctx context.Context) error
}

type Handler struct {
	Sto   Store
	Facts Facts
	Cache Cache
	// Now anchors the emerging-authors window.
	Now func() time.Time
}

func NewHandler(store Store, facts Facts, cache Cache) *Handler {
	return &Handler{Sto: store, Facts: facts, Cache: cache, Now: time.Now}
}

// Register mounts the book routes on mux, wrapping each with auth. The
// literal statistics and trends segments win over {id}.
func (h *Handler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/books/{$}", auth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/books/{$}", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/books/statistics/{$}", auth(http.HandlerFunc(h.Statistics)))
	mux.Handle("GET /api/books/trends/{$}", auth(http.HandlerFunc(h.Trends)))
	mux.Handle("GET /api/books/{id}/{$}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/books/{id}/{$}", auth(http.HandlerFunc(h.Replace)))
	mux.Handle("PATCH /api/books/{id}/{$}", auth(http.HandlerFunc(h.Patch)))
	mux.Handle("DELETE /api/books/{id}/{$}", auth(http.HandlerFunc(h.Delete)))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(query.Books, r.URL.Query())
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	items, total, err := h.Sto.List(r.Context(), p)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	if items == nil {
		items = []models.Book{}
	}
	httpx.Page(w, items, total, p.Page, p.PageSize, p.TotalPages(total))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in storebooks.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	b, err := h.Sto.Create(r.Context(), in)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	h.bump(r)
	httpx.Created(w, b)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.Sto.Get(r.Context(), id)
	if err != nil {
		apperr.Handle(w, r, err, storebooks.ErrNotFound)
		return
	}
	httpx.OK(w, b)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in storebooks.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	b, err := h.Sto.Replace(r.Context(), id, in)
	if err != nil {
		apperr.Handle(w, r, err, storebooks.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.OK(w, b)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p storebooks.Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	b, err := h.Sto.Patch(r.Context(), id, p)
	if err != nil {
		apperr.Handle(w, r, err, storebooks.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.OK(w, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Sto.Delete(r.Context(), id); err != nil {
		apperr.Handle(w, r, err, storebooks.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.NoContent(w)
}

// GET /api/books/statistics/
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	b, err := h.global(r.Context())
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.WriteRaw(w, http.StatusOK, b)
}

// GET /api/books/trends/?bucket=decade|year
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	bucket, err := stats.ParseBucket(r.URL.Query().Get("bucket"))
	if err != nil {
		apperr.Invalid(w, r, validate.Errors{{Field: "bucket", Code: "invalid", Message: err.Error()}})
		return
	}
	b, err := h.trends(r.Context(), bucket)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.WriteRaw(w, http.StatusOK, b)
}

// Warm fills the cache with the catalog-wide reports so the next reader
// does not pay for the aggregation.
func (h *Handler) Warm(ctx context.Context) error {
	if _, err := h.global(ctx); err != nil {
		return err
	}
	for _, b := range []stats.Bucket{stats.BucketDecade, stats.BucketYear} {
		if _, err := h.trends(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) global(ctx context.Context) ([]byte, error) {
	return h.Cache.Fetch(ctx, "global", "all", func(ctx context.Context) (any, error) {
		c, err := h.Facts.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		return stats.Global(c), nil
	})
}

func (h *Handler) trends(ctx context.Context, bucket stats.Bucket) ([]byte, error) {
	now := h.now()
	// the emerging-authors window moves daily, so the day is part of the key
	key := string(bucket) + ":" + now.UTC().Format(models.DateLayout)
	return h.Cache.Fetch(ctx, "trends", key, func(ctx context.Context) (any, error) {
		c, err := h.Facts.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		return stats.Trends(c, bucket, now), nil
	})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) bump(r *http.Request) {
	if err := h.Cache.Bump(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("stats cache bump failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		apperr.WriteStatus(w, r, http.StatusNotFound, "Not Found", "no book matches the given id")
	}
	return id, ok
}
