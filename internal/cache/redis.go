package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ storage.ResponseCache = (*RedisCache)(nil)

// RedisCache keeps upstream response bodies in Redis so several API replicas
// share one cache. Every stored key is tracked in an index set for Purge.
type RedisCache struct {
	client redis.Cmdable
	logger *logrus.Logger
}

func NewRedisCacheFromClient(client redis.Cmdable, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, responseKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get response: %w", err)
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, responseKey(key), body, ttl)
	pipe.SAdd(ctx, constants.RedisKeyResponseIndex, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set response: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, responseKey(key))
	pipe.SRem(ctx, constants.RedisKeyResponseIndex, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	return nil
}

func (r *RedisCache) Purge(ctx context.Context) error {
	keys, err := r.client.SMembers(ctx, constants.RedisKeyResponseIndex).Result()
	if err != nil {
		return fmt.Errorf("list response index: %w", err)
	}

	redisKeys := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		redisKeys = append(redisKeys, responseKey(k))
	}
	redisKeys = append(redisKeys, constants.RedisKeyResponseIndex)

	if err := r.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("purge responses: %w", err)
	}
	r.logger.WithField("entries", len(keys)).Info("purged response cache")
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func responseKey(key string) string {
	return constants.RedisKeyResponsePrefix + key
}
