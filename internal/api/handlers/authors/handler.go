// Package authors serves /api/authors/.
package authors

import (
	"context"
	"net/http"
	"strconv"

	"github.com/5w1tchy/library-api/internal/api/apperr"
	"github.com/5w1tchy/library-api/internal/api/httpx"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/query"
	"github.com/5w1tchy/library-api/internal/stats"
	storeauthors "github.com/5w1tchy/library-api/internal/store/authors"
	statsstore "github.com/5w1tchy/library-api/internal/store/stats"
)

type Store interface {
	List(ctx context.Context, p query.ListParams) ([]models.Author, int, error)
	Get(ctx context.Context, id int64) (models.AuthorDetail, error)
	Create(ctx context.Context, in storeauthors.Input) (models.Author, error)
	Replace(ctx context.Context, id int64, in storeauthors.Input) (models.Author, error)
	Patch(ctx context.Context, id int64, p storeauthors.Patch) (models.Author, error)
	Delete(ctx context.Context, id int64) error
}

type Facts interface {
	Author(ctx context.Context, id int64) (stats.AuthorFact, []stats.BookFact, error)
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
}

func NewHandler(store Store, facts Facts, cache Cache) *Handler {
	return &Handler{Sto: store, Facts: facts, Cache: cache}
}

// Register mounts the author routes on mux, wrapping each with auth.
func (h *Handler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/authors/{$}", auth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/authors/{$}", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/authors/{id}/{$}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/authors/{id}/{$}", auth(http.HandlerFunc(h.Replace)))
	mux.Handle("PATCH /api/authors/{id}/{$}", auth(http.HandlerFunc(h.Patch)))
	mux.Handle("DELETE /api/authors/{id}/{$}", auth(http.HandlerFunc(h.Delete)))
	mux.Handle("GET /api/authors/{id}/statistics/{$}", auth(http.HandlerFunc(h.Statistics)))
}

// GET /api/authors/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := query.Parse(query.Authors, r.URL.Query())
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
		items = []models.Author{}
	}
	httpx.Page(w, items, total, p.Page, p.PageSize, p.TotalPages(total))
}

// POST /api/authors/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in storeauthors.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	a, err := h.Sto.Create(r.Context(), in)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	h.bump(r)
	httpx.Created(w, a)
}

// GET /api/authors/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.Sto.Get(r.Context(), id)
	if err != nil {
		apperr.Handle(w, r, err, storeauthors.ErrNotFound)
		return
	}
	httpx.OK(w, a)
}

// PUT /api/authors/{id}/
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in storeauthors.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	a, err := h.Sto.Replace(r.Context(), id, in)
	if err != nil {
		apperr.Handle(w, r, err, storeauthors.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.OK(w, a)
}

// PATCH /api/authors/{id}/
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p storeauthors.Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	a, err := h.Sto.Patch(r.Context(), id, p)
	if err != nil {
		apperr.Handle(w, r, err, storeauthors.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.OK(w, a)
}

// DELETE /api/authors/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Sto.Delete(r.Context(), id); err != nil {
		apperr.Handle(w, r, err, storeauthors.ErrNotFound)
		return
	}
	h.bump(r)
	httpx.NoContent(w)
}

// GET /api/authors/{id}/statistics/
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.Cache.Fetch(r.Context(), "author", strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		a, books, err := h.Facts.Author(ctx, id)
		if err != nil {
			return nil, err
		}
		return stats.ForAuthor(a, books), nil
	})
	if err != nil {
		apperr.Handle(w, r, err, statsstore.ErrAuthorNotFound)
		return
	}
	httpx.WriteRaw(w, http.StatusOK, b)
}

func (h *Handler) bump(r *http.Request) {
	if err := h.Cache.Bump(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("stats cache bump failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		apperr.WriteStatus(w, r, http.StatusNotFound, "Not Found", "no author matches the given id")
	}
	return id, ok
}
