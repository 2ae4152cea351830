package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"circlesync/internal/modkit"
	"circlesync/internal/platform/config"
	"circlesync/internal/platform/logger"
	phttp "circlesync/internal/platform/net/http"
	"circlesync/internal/platform/net/middleware"
	"circlesync/internal/platform/store"

	"circlesync/internal/services/api"
	tcmod "circlesync/internal/services/trustcache/module"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const service = "circlesync-api"

func main() {
	root := config.New()
	core := root.Prefix("CORE_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tcmod.FromConfig(core)
	st, err := store.Open(ctx, tcmod.StoreConfig(root, service, opts.Store), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.FromStore(core, st)
	deps.Metrics = prometheus.DefaultRegisterer

	tc, err := tcmod.New(ctx, deps, opts)
	if err != nil {
		l.Panic().Err(err).Msg("trust cache module failed")
	}

	// http server (reads CORE_API_PORT / CORE_SHUTDOWN_GRACE)
	srv := phttp.NewServer(core, func(m *chi.Mux) {
		m.Use(middleware.Defaults()...)
		m.Handle("/metrics", promhttp.Handler())
	})
	api.Mount(srv.Router(), api.Options{
		Service: service,
		Deps:    deps,
		Slow:    core.MayDuration("API_SLOW", 0),
	}, tc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if every := opts.RefreshEvery; every > 0 {
		sched := tc.Ports().(tcmod.Ports).Scheduler
		g.Go(func() error { return sched.Loop(gctx, every) })
	} else {
		l.Info().Msg("background refresh disabled; set CORE_CIRCLES_REFRESH_EVERY to enable")
	}

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("api stopped with error")
		os.Exit(1)
	}
	l.Info().Msg("api stopped")
}
