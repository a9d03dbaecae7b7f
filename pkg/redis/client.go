// Package redis backs the index with a Redis server via go-redis/v9.
// Client implements the store capability set the index requires: set
// adds, hash increments, key scans, and MULTI/EXEC transactions.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/pkg/config"
)

// Client wraps a go-redis client. It implements index.Store.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// SetAdd inserts member into the set at key.
func (c *Client) SetAdd(ctx context.Context, key, member string) error {
	return c.rdb.SAdd(ctx, key, member).Err()
}

// SetMembers returns every member of the set at key.
func (c *Client) SetMembers(ctx context.Context, key string) ([]string, error) {
	return c.rdb.SMembers(ctx, key).Result()
}

// HashIncrBy adds delta to the hash field, creating key and field at
// zero if absent, and returns the new value.
func (c *Client) HashIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	return c.rdb.HIncrBy(ctx, key, field, delta).Result()
}

// HashGet reads a hash field without mutating it. A missing key or
// field reads as zero.
func (c *Client) HashGet(ctx context.Context, key, field string) (int64, error) {
	n, err := c.rdb.HGet(ctx, key, field).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Keys returns all keys matching the glob pattern. KEYS walks the
// whole keyspace; diagnostic use only.
func (c *Client) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.rdb.Keys(ctx, pattern).Result()
}

// Tx runs fn against a transactional pipeline. The queued commands are
// sent as one MULTI/EXEC block: all apply or none do.
func (c *Client) Tx(ctx context.Context, fn func(tx index.TxPipeline) error) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(&txPipeline{ctx: ctx, pipe: pipe})
	})
	return err
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

type txPipeline struct {
	ctx  context.Context
	pipe redis.Pipeliner
}

func (t *txPipeline) SetAdd(key, member string) {
	t.pipe.SAdd(t.ctx, key, member)
}

func (t *txPipeline) HashIncrBy(key, field string, delta int64) {
	t.pipe.HIncrBy(t.ctx, key, field, delta)
}

func (t *txPipeline) Del(keys ...string) {
	t.pipe.Del(t.ctx, keys...)
}
