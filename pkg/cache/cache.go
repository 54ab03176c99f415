// Package cache stores short-lived JSON values behind a driver chosen by
// CACHE_DRIVER: an in-process map ("memory") or Redis ("redis").
package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/pkg/logger"
)

// Store is implemented by every cache driver. Get reports a hit; any driver
// error is treated as a miss so callers fall back to the source of truth.
type Store interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Connect builds the configured driver. A Redis driver that fails its ping
// falls back to memory with a warning so the API still starts.
func Connect(ctx context.Context) Store {
	if config.CacheDriver() != "redis" {
		return NewMemory()
	}

	r, err := NewRedis(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("cache: redis unavailable, using memory driver", "error", err)
		return NewMemory()
	}
	return r
}

// Close releases the driver's connections, if it holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Remember returns the cached value for key, or calls fn, stores its result
// for ttl and returns it.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	fresh, err := fn(ctx)
	if err != nil {
		return fresh, err
	}

	if err := s.Set(ctx, key, fresh, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
	}
	return fresh, nil
}

// Forget removes key and logs instead of failing; a stale entry expires on
// its own TTL anyway.
func Forget(ctx context.Context, s Store, key string) {
	if err := s.Del(ctx, key); err != nil {
		logger.WithCtx(ctx).Warn("cache: delete failed", "key", key, "error", fmt.Sprint(err))
	}
}
