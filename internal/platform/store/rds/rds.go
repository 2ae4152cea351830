// Package rds provides a go-redis client with URL parsing and a health probe
package rds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis client
// URL follows redis://[user:pass@]host:port/db
type Config struct {
	URL          string
	ClientName   string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client wraps the go-redis client with health checking
type Client struct {
	*redis.Client
}

// Options parses cfg into go-redis options, applying non-zero overrides
func Options(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis: empty url")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.ClientName != "" {
		opts.ClientName = cfg.ClientName
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// New dials redis and pings it once
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: c}, nil
}

// Wrap adopts an existing go-redis client
func Wrap(c *redis.Client) *Client { return &Client{Client: c} }

// Health reports whether the connection answers a ping
func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return errors.New("redis: nil client")
	}
	return c.Ping(ctx).Err()
}
