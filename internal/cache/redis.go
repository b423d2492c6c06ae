// Package cache wraps redis/go-redis for the read-through agent-credential
// cache: fail-open on connect error, JSON-serialized values.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drmoyassine/masteragent/internal/config"
)

// Client wraps a go-redis client and tracks whether caching is usable.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects to Redis. Connection failure disables caching rather than
// failing startup — the Gate falls back to a direct database lookup.
func New(ctx context.Context, cfg *config.RedisConfig) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	enabled := rdb.Ping(pingCtx).Err() == nil
	return &Client{rdb: rdb, enabled: enabled}
}

func (c *Client) IsEnabled() bool { return c.enabled }

// GetJSON reads and unmarshals a cached value. redis.Nil is returned
// unchanged so callers can distinguish a miss from a connection error.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	if !c.enabled {
		return redis.Nil
	}
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
