// Package cache is a versioned Redis read-through cache for statistics
// payloads. Every catalog write bumps the version, so entries written
// before the write are never served after it. A nil client disables caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/metrics"
)

const versionKey = "stats:ver"

type Stats struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewStats(rdb *redis.Client, ttl time.Duration) *Stats {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Stats{rdb: rdb, ttl: ttl, timeout: 150 * time.Millisecond}
}

func (c *Stats) Enabled() bool { return c != nil && c.rdb != nil }

// Fetch returns the JSON payload for report/key, computing it with load on
// a miss. Redis failures fall through to load.
func (c *Stats) Fetch(ctx context.Context, report, key string, load func(context.Context) (any, error)) ([]byte, error) {
	if !c.Enabled() {
		metrics.RecordCache(report, false)
		return compute(ctx, load)
	}

	ver, ok := c.version(ctx)
	var k string
	if ok {
		k = fmt.Sprintf("stats:v%d:%s:%s", ver, report, key)
		if b, hit := c.get(ctx, k); hit {
			metrics.RecordCache(report, true)
			return b, nil
		}
	}
	metrics.RecordCache(report, false)

	b, err := compute(ctx, load)
	if err != nil {
		return nil, err
	}
	if ok {
		c.set(ctx, k, b)
	}
	return b, nil
}

// Bump invalidates every cached payload. Call after a committed write.
func (c *Stats) Bump(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump stats version: %w", err)
	}
	return nil
}

func compute(ctx context.Context, load func(context.Context) (any, error)) ([]byte, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (c *Stats) version(ctx context.Context) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ver, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("stats cache: version read failed, bypassing")
		return 0, false
	}
	return ver, true
}

func (c *Stats) get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Ctx(ctx).Warn().Err(err).Msg("stats cache: get failed")
		}
		return nil, false
	}
	return b, true
}

func (c *Stats) set(ctx context.Context, key string, b []byte) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rdb.SetEx(ctx, key, b, c.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("stats cache: set failed")
	}
}
