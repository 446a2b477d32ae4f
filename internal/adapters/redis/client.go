package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch-project/internal/config"
)

// Client wraps a Redis client with configuration.
type Client struct {
	native *redis.Client
}

// NewClient creates a new Redis client with the given configuration.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{native: rdb}, nil
}

// Native returns the underlying redis.Client for advanced operations.
func (c *Client) Native() *redis.Client {
	return c.native
}

// SetNX stores a value with an expiration only if the key does not exist,
// reporting whether it was set.
func (c *Client) SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	return c.native.SetNX(ctx, key, value, expiration).Result()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.native.Close()
}
