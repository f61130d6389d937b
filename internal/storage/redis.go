package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "focis:document"

// RedisStore keeps the document under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of it.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// OpenRedis connects to addr and verifies the server answers.
func OpenRedis(ctx context.Context, addr, key string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := NewRedisStore(client, key)
	s.owned = true
	return s, nil
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

// Close closes the client if OpenRedis created it.
func (r *RedisStore) Close() error {
	if r == nil || !r.owned {
		return nil
	}
	return r.client.Close()
}
