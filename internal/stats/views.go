// Package stats counts how often each supply is viewed.
package stats

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "supply_views:"

// ViewCounter records a view of a supply and returns the total so far.
type ViewCounter interface {
	Increment(ctx context.Context, sid string) (int64, error)
	Views(ctx context.Context, sid string) (int64, error)
}

type RedisCounter struct {
	redis *redis.Client
}

func NewRedisCounter(redisClient *redis.Client) *RedisCounter {
	return &RedisCounter{redis: redisClient}
}

// Increment uses Redis INCR so that concurrent servers share one count.
func (c *RedisCounter) Increment(ctx context.Context, sid string) (int64, error) {
	val, err := c.redis.Incr(ctx, keyPrefix+sid).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment view counter: %w", err)
	}
	return val, nil
}

// Views returns the current count without incrementing it.
func (c *RedisCounter) Views(ctx context.Context, sid string) (int64, error) {
	val, err := c.redis.Get(ctx, keyPrefix+sid).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read view counter: %w", err)
	}
	return val, nil
}

// NopCounter is used when no Redis server is configured.
type NopCounter struct{}

func (NopCounter) Increment(context.Context, string) (int64, error) {
	return 0, nil
}

func (NopCounter) Views(context.Context, string) (int64, error) {
	return 0, nil
}
