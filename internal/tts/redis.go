package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lasi:tts:"

// RedisCache shares synthesized audio between server instances.
type RedisCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to addr and checks the connection.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheWithClient(rdb, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(rdb *goredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, res *Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
