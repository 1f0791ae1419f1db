package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares failure counters between instances. Counters are fixed
// windows: the first failure sets the key's TTL.
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: limit, window: window}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) Check(ctx context.Context, key string) (Decision, error) {
	k := keyPrefix + key
	failures, err := r.client.Get(ctx, k).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Decision{}, nil
		}
		return Decision{}, fmt.Errorf("read failures: %w", err)
	}
	if failures < r.limit {
		return Decision{}, nil
	}

	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("read lockout ttl: %w", err)
	}
	if ttl < 0 {
		ttl = r.window
	}
	return Decision{Locked: true, Remaining: ttl}, nil
}

func (r *Redis) RecordFailure(ctx context.Context, key string) error {
	k := keyPrefix + key
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset failures: %w", err)
	}
	return nil
}
