package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCmdable is the subset of redis.Cmdable used by RedisState.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisState implements State backed by one Redis string key without expiry.
type RedisState struct {
	key    string
	client redisCmdable
}

func NewRedisState(client redisCmdable, key string) *RedisState {
	return &RedisState{key: key, client: client}
}

func (r *RedisState) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis %s: %w", r.key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from redis: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisState) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", r.key, err)
	}
	return nil
}

func (r *RedisState) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", r.key, err)
	}
	return nil
}

// RedisBackend keeps each key under <prefix><key>.
type RedisBackend struct {
	client redisCmdable
	prefix string
}

func NewRedisBackend(client redisCmdable, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) State(key string) State {
	return NewRedisState(b.client, b.prefix+key)
}
