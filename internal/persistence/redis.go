package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/restaurantos/restaurant-service/internal/config"
)

// ErrRedisNotConfigured is returned by Ping on a nil store.
var ErrRedisNotConfigured = errors.New("redis client not configured")

// Redis holds the shared client used for login throttling and readiness checks.
// Keys written through it live under a common prefix so several services can
// share one instance.
type Redis struct {
	Client *redis.Client
	prefix string
}

// NewRedis builds the client and pings it once. An unreachable server is not
// fatal: callers that depend on Redis degrade on their own.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, login throttling fails open", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client, prefix: cfg.KeyPrefix}
}

// Key joins name onto the configured prefix.
func (r *Redis) Key(name string) string {
	if r == nil {
		return name
	}
	return r.prefix + name
}

// Close releases the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}
