package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in redis under "<prefix>:<namespace>:<key>".
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl keeps values forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "saborconquista"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(namespace, key string) string {
	return r.prefix + ":" + namespace + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := r.client.Set(ctx, r.key(namespace, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.Del(ctx, r.key(namespace, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
