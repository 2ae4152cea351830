// Package pg opens the pgxpool backing the postgres cache store
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	AppName  string
	MaxConns int32
	SlowMs   int
}

// PG holds the pool plus the tracing knobs the sql adapter reads
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option adjusts Open
type Option func(*PG, *pgxpool.Config)

// WithTracer attaches a statement tracer
func WithTracer(t QueryTracer) Option {
	return func(p *PG, _ *pgxpool.Config) { p.Tracer = t }
}

// WithPoolConfig exposes the parsed pool config before the pool is built
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(_ *PG, pc *pgxpool.Config) { fn(pc) }
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool; no connection is made until first use
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pg url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	p := &PG{SlowMs: cfg.SlowMs}
	for _, o := range opts {
		o(p, pcfg)
	}
	if p.Pool, err = newPool(ctx, pcfg); err != nil {
		return nil, err
	}
	return p, nil
}

// WaitReady pings until postgres answers, doubling the pause up to 2s
// attempts <= 0 means 20 and timeout <= 0 means 3s per ping
func (p *PG) WaitReady(ctx context.Context, attempts int, timeout time.Duration, onRetry func(attempt int, err error)) error {
	if attempts <= 0 {
		attempts = 20
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pause := 150 * time.Millisecond
	var last error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = p.Pool.Ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if onRetry != nil {
			onRetry(i, last)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
		pause = min(pause*2, 2*time.Second)
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, last)
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
