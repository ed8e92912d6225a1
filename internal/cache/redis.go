package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

// RedisCache implements Cache on a Redis backend. Values are stored as JSON.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis at addr. The timeout applies at the
// client level (dial/read/write); individual operations add none of their
// own.
func NewRedisCache(addr, password string, timeout time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &RedisCache{client: client}
}

// NewRedisCacheFromClient wraps an existing client, mainly for tests
// against miniredis-style servers.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) (string, error) {
	if value == nil {
		return "", common.ErrorValidation
	}
	if key == "" {
		key = deriveKey(value)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", common.ErrorCache, err)
	}

	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: set: %v", common.ErrorCache, err)
	}
	return key, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return common.ErrorValidation
	}

	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: get: %v", common.ErrorCache, err)
	}

	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", common.ErrorCache, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return common.ErrorValidation
	}

	// DEL of an absent key reports 0 deleted, which is still a success.
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", common.ErrorCache, err)
	}
	return nil
}
