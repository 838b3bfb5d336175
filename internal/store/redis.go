package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/skycast/internal/weather"
)

const redisKeyPrefix = "skycast:snapshot:"

// RedisCache is a weather.SnapshotCache whose entries expire in Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to addr and checks the connection. A ttl <= 0 means
// weather.CacheTTL.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return newRedisCache(rdb, ttl), nil
}

func newRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = weather.CacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (weather.Snapshot, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.Snapshot{}, false, nil
	}
	if err != nil {
		return weather.Snapshot{}, false, err
	}

	var snap weather.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return weather.Snapshot{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, snapshot weather.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.rdb.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
