package middlewares

import (
	"net/http"
	"time"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit is a fixed-window counter for the token endpoints, keyed by
// client IP. It is a no-op without Redis and fails open on Redis errors.
func LoginRateLimit(rdb *redis.Client, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rdb == nil || max <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rl:login:" + clientIP(r)
			ctx := r.Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("login limiter unavailable; allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if n > int64(max) {
				retry := window
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retry = ttl
				}
				tooManyRequests(w, r, key, retry)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
