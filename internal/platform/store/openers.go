package store

import (
	"context"

	"circlesync/internal/platform/store/pg"
	"circlesync/internal/platform/store/rds"
)

// openPG opens pg, waits for it to answer, and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var opts []pg.Option
	if cfg.PG.LogSQL {
		opts = append(opts, pg.WithTracer(pg.Tracer(s.Log)))
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, opts...)
	if err != nil {
		return nil, err
	}
	err = p.WaitReady(ctx, cfg.PG.ConnectRetries, cfg.PG.PingTimeout, func(attempt int, err error) {
		s.Log.Warn().Err(err).Int("attempt", attempt).Msg("postgres not ready")
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// openRDS dials redis and verifies it with a ping
func openRDS(ctx context.Context, cfg Config, s *Store) (*rds.Client, error) {
	c, err := rds.New(ctx, rds.Config{
		URL:          cfg.RDS.URL,
		ClientName:   cfg.AppName,
		PoolSize:     cfg.RDS.PoolSize,
		DialTimeout:  cfg.RDS.DialTimeout,
		ReadTimeout:  cfg.RDS.ReadTimeout,
		WriteTimeout: cfg.RDS.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("addr", c.Options().Addr).Msg("redis connected")
	return c, nil
}
