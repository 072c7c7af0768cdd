package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pousadahub/ordering-backend/pkg/config"
	"github.com/pousadahub/ordering-backend/pkg/kv"
)

const keyNamespace = "po"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis connection and implements the two-scope kv.Store:
// session-scoped entries carry the session TTL, durable entries carry the
// durable TTL (zero means no expiry).
type Client struct {
	store      cmdable
	raw        *redis.Client
	sessionTTL time.Duration
	durableTTL time.Duration
}

var _ kv.Store = (*Client)(nil)

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, session config.SessionConfig) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{
		store:      raw,
		raw:        raw,
		sessionTTL: session.SessionTTL,
		durableTTL: session.DurableTTL,
	}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Load reads the value stored under key within the scope.
func (c *Client) Load(ctx context.Context, scope kv.Scope, key string) ([]byte, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	value, err := c.store.Get(ctx, c.buildKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Save writes the value with the TTL implied by the scope.
func (c *Client) Save(ctx context.Context, scope kv.Scope, key string, value []byte) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Set(ctx, c.buildKey(scope, key), value, c.ttlFor(scope)).Err()
}

// Remove deletes the entry; missing keys are not an error.
func (c *Client) Remove(ctx context.Context, scope kv.Scope, key string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, c.buildKey(scope, key)).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) ttlFor(scope kv.Scope) time.Duration {
	if scope == kv.ScopeSession {
		return c.sessionTTL
	}
	return c.durableTTL
}

func (c *Client) buildKey(scope kv.Scope, key string) string {
	parts := []string{keyNamespace, string(scope)}
	for _, part := range strings.Split(key, ":") {
		if part == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(part))
	}
	return strings.Join(parts, ":")
}
