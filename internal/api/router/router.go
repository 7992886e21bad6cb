// Package router assembles the HTTP surface: routes, health checks and the
// middleware chain.
package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	authorsh "github.com/5w1tchy/library-api/internal/api/handlers/authors"
	booksh "github.com/5w1tchy/library-api/internal/api/handlers/books"
	"github.com/5w1tchy/library-api/internal/api/httpx"
	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/auth"
	"github.com/5w1tchy/library-api/internal/cache"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/maintenance"
	"github.com/5w1tchy/library-api/internal/metrics"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/security/password"
	storeauthors "github.com/5w1tchy/library-api/internal/store/authors"
	storebooks "github.com/5w1tchy/library-api/internal/store/books"
	statsstore "github.com/5w1tchy/library-api/internal/store/stats"
	"github.com/redis/go-redis/v9"
)

// Deps are the process-wide resources the router wires into handlers.
type Deps struct {
	DB     *sql.DB
	RDB    *redis.Client // optional
	Config config.Config
	Signer *jwtutil.Signer
	Hasher *password.Hasher
	// Stop ends background work such as the local limiter sweep.
	Stop <-chan struct{}
}

// New builds the full handler tree.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	users := auth.NewSQLStore(d.DB)
	requireAuth := mw.RequireAuth(d.Signer, users)
	statsCache := cache.NewStats(d.RDB, d.Config.StatsCacheTTL)
	facts := statsstore.New(d.DB)

	authorsh.NewHandler(storeauthors.New(d.DB), facts, statsCache).Register(mux, requireAuth)
	books := booksh.NewHandler(storebooks.New(d.DB), facts, statsCache)
	books.Register(mux, requireAuth)
	if statsCache.Enabled() && d.Config.StatsWarmInterval > 0 && d.Stop != nil {
		ctx, cancel := context.WithCancel(context.Background())
		go func() { <-d.Stop; cancel() }()
		go maintenance.Every(ctx, "stats-warm", d.Config.StatsWarmInterval, books.Warm)
	}

	var deny auth.Denylist
	if d.RDB != nil {
		deny = auth.NewRedisDenylist(d.RDB)
	}
	tokens := auth.New(users, d.Signer, d.Hasher, deny)
	loginLimit := mw.LoginRateLimit(d.RDB, d.Config.LoginMaxAttempts, d.Config.LoginWindow)
	mux.Handle("POST /api/token/{$}", loginLimit(http.HandlerFunc(tokens.Obtain)))
	mux.Handle("POST /api/token/refresh/{$}", loginLimit(http.HandlerFunc(tokens.Refresh)))

	mux.HandleFunc("GET /healthz", Healthz)
	mux.Handle("GET /readyz", Readyz(d.DB, d.RDB))
	mux.Handle("GET /metrics", metrics.Handler())

	return Chain(appendSlash(mux),
		mw.RequestID,
		mw.ResponseTime,
		mw.SecurityHeaders(d.Config.StrictSecurity),
		mw.CORS(d.Config.CORSOrigins),
		mw.RateLimit(d.RDB, d.Config.RateLimitRPS, d.Config.RateLimitBurst, d.Stop),
		mw.BodySizeLimit(d.Config.MaxBodySize),
		mw.Compression,
		mw.HPP(mw.DefaultHPPOptions()),
		mw.AccessLog,
		mw.Recovery,
	)
}

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// appendSlash redirects a path without its trailing slash to the canonical
// form when only that form is routed. Safe methods get 301; others get 308
// so the method and body survive.
func appendSlash(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			mux.ServeHTTP(w, r)
			return
		}
		withSlash := r.Clone(r.Context())
		withSlash.URL.Path = r.URL.Path + "/"
		withSlash.URL.RawPath = ""
		_, slashed := mux.Handler(withSlash)
		if slashed == "" {
			mux.ServeHTTP(w, r)
			return
		}
		// The mux reports its own 301 to path+"/" with the redirect path, or
		// the target pattern, in place of a registered pattern.
		if _, pattern := mux.Handler(r); pattern != "" && pattern != withSlash.URL.Path && pattern != slashed {
			mux.ServeHTTP(w, r)
			return
		}
		target := withSlash.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		code := http.StatusMovedPermanently
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			code = http.StatusPermanentRedirect
		}
		http.Redirect(w, r, target, code)
	})
}

// Healthz reports liveness only.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Readyz checks the database, and Redis when configured.
func Readyz(db Pinger, rdb *redis.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		ready := true
		if err := db.PingContext(ctx); err != nil {
			checks["database"] = "unavailable"
			ready = false
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "unavailable"
				ready = false
			}
		}
		if !ready {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": checks})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": checks})
	})
}
