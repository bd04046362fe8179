package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the state of a key after a hit.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	Hits       int64
}

// Limiter counts hits per key over a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Reset(ctx context.Context, key string) error
}

// RedisLimiter is a fixed-window limiter (INCR + EXPIRE) shared by every instance.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter builds a limiter allowing max hits per window for each key.
func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) key(key string) string {
	return fmt.Sprintf("%s%s", l.prefix, strings.ReplaceAll(strings.ToLower(key), " ", "_"))
}

// Allow records a hit for key. A non-positive max disables limiting.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if l.max <= 0 {
		return Result{Allowed: true}, nil
	}

	redisKey := l.key(key)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// no expiry: either the first hit or an EXPIRE that never landed
	retryAfter := ttl.Val()
	if retryAfter < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, err
		}
		retryAfter = l.window
	}

	hits := incr.Val()
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= l.max, Remaining: remaining, Hits: hits}
	if !res.Allowed {
		res.RetryAfter = retryAfter
	}
	return res, nil
}

// Reset clears the counter for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
