package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window counter shared by every API replica.
type Redis struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedis(rdb *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{
		rdb:    rdb,
		prefix: "sharpexec:login:",
		limit:  limit,
		window: window,
	}
}

func (r *Redis) Hit(ctx context.Context, key string) (Decision, error) {
	k := r.prefix + key

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX keeps the window anchored at the first attempt
	pipe.ExpireNX(ctx, k, r.window)
	ttl := pipe.PTTL(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("ratelimit hit: %w", err)
	}

	count := int(incr.Val())
	if count > r.limit {
		retryAfter := ttl.Val()
		if retryAfter < 0 {
			retryAfter = r.window
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true, Remaining: r.limit - count}, nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}
