package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps a redis connection with JSON (de)serialization. A nil *Client
// is safe to use: every operation reports a miss, so the app degrades to
// uncached reads when redis is unavailable.
type Client struct {
	rdb *redis.Client
	ctx context.Context
}

func New(host, port string, logger *zap.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis_connection_failed",
			zap.Error(err),
			zap.String("addr", addr),
		)
		return nil, err
	}

	logger.Info("redis_connected", zap.String("addr", addr))

	return &Client{rdb: rdb, ctx: ctx}, nil
}

func (c *Client) Set(key string, value interface{}, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.rdb.Set(c.ctx, key, data, expiration).Err()
}

// Get reads the key into dest. A miss is returned as an error.
func (c *Client) Get(key string, dest interface{}) error {
	if c == nil {
		return redis.Nil
	}
	val, err := c.rdb.Get(c.ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("cache miss: %w", err)
	} else if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return nil
}

func (c *Client) Delete(key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(c.ctx, key).Err()
}

// DeletePattern removes all keys matching the pattern (e.g. "habit_stats:1:*").
func (c *Client) DeletePattern(pattern string) error {
	if c == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(c.ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(c.ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete keys failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
