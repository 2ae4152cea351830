package repo

import (
	"context"
	"errors"
	"time"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/store/rds"

	"github.com/redis/go-redis/v9"
)

// Redis stores cache documents as plain string values
type Redis struct {
	c   *rds.Client
	ttl time.Duration
}

// NewRedis wraps an open client; ttl 0 keeps keys until overwritten
func NewRedis(c *rds.Client, ttl time.Duration) *Redis {
	if c == nil {
		panic("repo.NewRedis requires a non nil client")
	}
	return &Redis{c: c, ttl: ttl}
}

// Get implements domain.Store, redis.Nil is a miss
func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis get")
	}
	return b, true, nil
}

// Set implements domain.Store
func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := s.c.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis set")
	}
	return nil
}

// Delete implements domain.Store
func (s *Redis) Delete(ctx context.Context, key string) error {
	if err := s.c.Del(ctx, key).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis del")
	}
	return nil
}
