// Package cache provides a small Redis client used as a read-through cache.
//
// The cache is strictly optional infrastructure: Connect failures leave the
// process serving from the primary stores, and callers treat every cache
// error as a miss.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/campusmart/pkg/metrics"
)

// Client wraps a Redis connection with string get/set/delete and hit/miss
// instrumentation.
type Client struct {
	rdb *redis.Client
}

// Connect initialises the Redis client and verifies the connection with a
// ping. Returns an error so the caller can react (log warning, fall back,
// or abort).
func Connect(ctx context.Context, addr, password string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Get retrieves a cached value by key. A missing key returns redis.Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return "", err
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return val, nil
}

// Set stores value under key for the given TTL.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete removes one or more keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
