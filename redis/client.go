package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/scribekit/logger"
)

// ErrNil is returned by Get for a missing key.
var ErrNil = goredis.Nil

// Client wraps a go-redis client with logging and an idempotent Close.
type Client struct {
	rdb *goredis.Client
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a client. It does not dial; use Ping to verify the server.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	log := logger.Get("redis")
	log.Debug("redis client created", logger.Fields("addr", cfg.Addr, "db", cfg.DB))
	return &Client{rdb: rdb, cfg: cfg, log: log}, nil
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.cfg.Addr, err)
	}
	return nil
}

// Get returns the raw value for key, or ErrNil.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

// Set stores value with an expiration; 0 keeps it forever.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del removes keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// TTL returns the remaining lifetime of key; negative values follow
// Redis semantics (-1 no expiry, -2 missing).
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

// Close closes the pool. Safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rdb.Close()
	if errors.Is(err, goredis.ErrClosed) {
		return nil
	}
	return err
}

// Name implements provider.Provider.
func (c *Client) Name() string { return "redis" }

// IsAvailable pings the server.
func (c *Client) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	return !closed && c.rdb.Ping(ctx).Err() == nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }
