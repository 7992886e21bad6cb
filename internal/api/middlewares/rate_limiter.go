package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/5w1tchy/library-api/internal/api/apperr"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type KeyFunc func(r *http.Request) string

// PerIPKey buckets requests by client address.
func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, key string, retryAfter time.Duration) {
	sec := int64((retryAfter + time.Second - 1) / time.Second)
	if sec < 1 {
		sec = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(sec, 10))
	metrics.RateLimited.Inc()
	logging.Ctx(r.Context()).Warn().Str("key", key).Int64("retry_after_s", sec).Msg("rate limited")
	apperr.Write(w, r, apperr.Problem{
		Status:    http.StatusTooManyRequests,
		Title:     "Too Many Requests",
		Retryable: true,
	})
}

// --------- Token Bucket (Redis + Lua) ---------

const tokenBucketLua = `
-- KEYS[1] = bucket key (hash: tokens, ts)
-- ARGV[1] = tokens per second, ARGV[2] = capacity
-- returns {allowed, remaining, retry_after_ms}
local key   = KEYS[1]
local rate  = tonumber(ARGV[1])
local cap   = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])

if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`

// RedisTokenBucket shares one bucket per key across every API instance.
type RedisTokenBucket struct {
	rdb      *redis.Client
	keyFn    KeyFunc
	ratePerS float64
	burst    int
	script   *redis.Script
}

func NewRedisTokenBucket(rdb *redis.Client, ratePerSecond float64, burst int, keyFn KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{
		rdb:      rdb,
		keyFn:    keyFn,
		ratePerS: ratePerSecond,
		burst:    burst,
		script:   redis.NewScript(tokenBucketLua),
	}
}

// Middleware fails open when Redis is unreachable.
func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := tb.keyFn(r)

		res, err := tb.script.Run(r.Context(), tb.rdb, []string{key},
			strconv.FormatFloat(tb.ratePerS, 'f', -1, 64),
			strconv.Itoa(tb.burst),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("token bucket unavailable; allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			tooManyRequests(w, r, key, time.Duration(res[2])*time.Millisecond)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- In-process fallback ---------

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is the per-process limiter used when Redis is not configured.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	keyFn    KeyFunc
	idle     time.Duration
	now      func() time.Time
}

func NewLocalLimiter(ratePerSecond float64, burst int, keyFn KeyFunc) *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
		keyFn:    keyFn,
		idle:     5 * time.Minute,
		now:      time.Now,
	}
}

func (l *LocalLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Sweep drops limiters idle for longer than the idle window.
func (l *LocalLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for k, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, k)
		}
	}
}

// Run sweeps periodically until stop is closed.
func (l *LocalLimiter) Run(stop <-chan struct{}) {
	t := time.NewTicker(l.idle)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

func (l *LocalLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.keyFn(r)
		lim := l.get(key)

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))

		res := lim.Reserve()
		if d := res.Delay(); d > 0 {
			res.Cancel()
			w.Header().Set("X-RateLimit-Remaining", "0")
			tooManyRequests(w, r, key, d)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// RateLimit picks the shared Redis bucket when a client is available.
func RateLimit(rdb *redis.Client, ratePerSecond float64, burst int, stop <-chan struct{}) func(http.Handler) http.Handler {
	key := PerIPKey("rl:api")
	if rdb != nil {
		return NewRedisTokenBucket(rdb, ratePerSecond, burst, key).Middleware
	}
	l := NewLocalLimiter(ratePerSecond, burst, key)
	if stop != nil {
		go l.Run(stop)
	}
	return l.Middleware
}
