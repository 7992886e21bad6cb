package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisDenylistUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()

	fresh, err := NewRedisDenylist(rdb).Consume(context.Background(), "jti", time.Minute)
	assert.Error(t, err)
	assert.False(t, fresh)
}
