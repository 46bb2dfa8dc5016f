package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxTTLJitter = 5 * time.Minute

func NewRedisStorage(client *redis.Client, baseTTL time.Duration) *RedisStorage {
	return &RedisStorage{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisStorage struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisStorage) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Set stores value with the base TTL plus up to five minutes of jitter so
// snapshots written together do not all expire together.
func (r RedisStorage) Set(ctx context.Context, key, value string) error {
	var ttl time.Duration
	if r.baseTTL > 0 {
		ttl = r.baseTTL + time.Duration(rand.Int63n(int64(maxTTLJitter)))
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
