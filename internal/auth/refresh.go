package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records refresh-token ids that have already been rotated.
type Denylist interface {
	// Consume marks jti as used until ttl elapses. It reports false when jti
	// was already used.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// RedisDenylist keeps one `rt:deny:{jti}` key per rotated token.
type RedisDenylist struct {
	RDB *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{RDB: rdb}
}

func (d *RedisDenylist) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	return d.RDB.SetNX(ctx, "rt:deny:"+jti, 1, ttl).Result()
}
