package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	foodCountKey = "foods:count"
	foodCountTTL = 30 * time.Second
)

// RedisAdapter caches the catalog count hint.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: foodCountTTL}
}

func (r *RedisAdapter) GetFoodCount(ctx context.Context) (int64, bool, error) {
	count, err := r.client.Get(ctx, foodCountKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *RedisAdapter) SetFoodCount(ctx context.Context, count int64) error {
	return r.client.Set(ctx, foodCountKey, count, r.ttl).Err()
}

func (r *RedisAdapter) InvalidateFoodCount(ctx context.Context) error {
	return r.client.Del(ctx, foodCountKey).Err()
}
