package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JMURv/session-keeper/internal/cache"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Redis struct {
	cli *redis.Client
}

func New(conf config.Config) *Redis {
	cli := redis.NewClient(
		&redis.Options{
			Addr:         conf.Redis.Addr,
			Password:     conf.Redis.Pass,
			DB:           conf.Redis.DB,
			DialTimeout:  conf.Redis.Timeout,
			ReadTimeout:  conf.Redis.Timeout,
			WriteTimeout: conf.Redis.Timeout,
		},
	)

	if _, err := cli.Ping(context.Background()).Result(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}

	return &Redis{cli: cli}
}

func (r *Redis) Close() error {
	return r.cli.Close()
}

func (r *Redis) GetToStruct(ctx context.Context, key string, dest any) error {
	const op = "cache.GetToStruct"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	val, err := r.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.ErrNotFoundInCache
	} else if err != nil {
		zap.L().Debug("failed to get from cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return err
	}

	if err = json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Set never fails the caller: cache writes are best-effort.
func (r *Redis) Set(ctx context.Context, t time.Duration, key string, val any) {
	const op = "cache.Set"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	bytes, err := json.Marshal(val)
	if err != nil {
		zap.L().Debug("failed to marshal value", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return
	}

	if err = r.cli.Set(ctx, key, bytes, t).Err(); err != nil {
		zap.L().Debug("failed to set to cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
}

// Reserve claims key for ttl. It reports false when the key is already held.
func (r *Redis) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.Reserve"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	ok, err := r.cli.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		zap.L().Debug("failed to reserve key", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (r *Redis) Delete(ctx context.Context, key string) {
	const op = "cache.Delete"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := r.cli.Del(ctx, key).Err(); err != nil {
		zap.L().Debug("failed to delete from cache", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) InvalidateKeysByPattern(ctx context.Context, pattern string) {
	const op = "cache.InvalidateKeysByPattern"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var cursor uint64
	for {
		keys, next, err := r.cli.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			zap.L().Debug("failed to scan keys", zap.String("op", op), zap.String("pattern", pattern), zap.Error(err))
			return
		}

		if len(keys) > 0 {
			if err = r.cli.Del(ctx, keys...).Err(); err != nil {
				zap.L().Debug("failed to delete keys", zap.String("op", op), zap.Error(err))
			}
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}
