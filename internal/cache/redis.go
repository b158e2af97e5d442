// Package cache is the Redis layer behind server-side sessions and the
// credential rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool sizing for one web process.
const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Cache wraps a go-redis client with the session and rate-limit operations.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, applies the pool sizing and checks that the server
// answers. The client is closed again when it does not.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	applyPoolSizing(opt)

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", opt.Addr, err)
	}

	return NewWithClient(client), nil
}

func applyPoolSizing(opt *redis.Options) {
	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime
}

// NewWithClient wraps an existing client. Integration tests use it.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping backs /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the pool. Registered as a shutdown hook.
func (c *Cache) Close() error {
	return c.client.Close()
}
