// Package redis provides the collection checkpoint store. Each collection
// day keeps a set of symbols already persisted, so an interrupted run can
// resume without re-spending vendor quota on finished symbols.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for checkpointing.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func checkpointKey(day string) string {
	return fmt.Sprintf("collected:%s", day)
}

// MarkCollected records that a symbol was persisted for the given day.
// Checkpoints expire after 48h; they only need to survive same-day
// restarts.
func (c *Client) MarkCollected(ctx context.Context, day, symbol string) error {
	key := checkpointKey(day)
	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, key, symbol)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sadd failed: %w", err)
	}
	return nil
}

// Collected reports whether a symbol was already persisted for the day.
func (c *Client) Collected(ctx context.Context, day, symbol string) (bool, error) {
	ok, err := c.rdb.SIsMember(ctx, checkpointKey(day), symbol).Result()
	if err != nil {
		return false, fmt.Errorf("sismember failed: %w", err)
	}
	return ok, nil
}

// CollectedCount returns how many symbols are checkpointed for the day.
func (c *Client) CollectedCount(ctx context.Context, day string) (int64, error) {
	n, err := c.rdb.SCard(ctx, checkpointKey(day)).Result()
	if err != nil {
		return 0, fmt.Errorf("scard failed: %w", err)
	}
	return n, nil
}
