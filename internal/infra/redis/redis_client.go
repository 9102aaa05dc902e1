// File: internal/infra/redis/redis_client.go
package redis

import (
	"context"

	"github.com/go-redis/redis/v8"

	"chatwarden/internal/config"
)

// Client is a thin wrapper over go-redis, scoped to the one thing
// chatwarden needs it for: the cycle-leadership lock (SPEC_FULL.md §11,
// lock.go). It is deliberately narrow — there is no cross-cycle cache here
// (spec.md §5: "no in-memory cache that survives across cycles beyond the
// per-bot update cursor").
type Client struct {
	cli *redis.Client
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{cli: c}, nil
}

func (c *Client) Close() error { return c.cli.Close() }
