package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"circlesync/internal/modkit"
	"circlesync/internal/platform/config"
	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	"circlesync/internal/platform/store"

	"circlesync/internal/services/trustcache/domain"
	tcmod "circlesync/internal/services/trustcache/module"
	"circlesync/internal/services/trustcache/service"

	"github.com/prometheus/client_golang/prometheus"
)

const appName = "circlesync-refresh"

func main() { os.Exit(run()) }

func run() int {
	root := config.New()
	core := root.Prefix("CORE_")
	l := logger.Get()
	opts := tcmod.FromConfig(core)

	var (
		fMode    = flag.String("mode", "auto", "refresh mode: full | incremental | auto")
		fBatch   = flag.Int("batch", 0, "page size, 0 uses CORE_CIRCLES_BATCH_SIZE")
		fMax     = flag.Int("max", 0, "max new users for this run, 0 uses the mode default")
		fClear   = flag.Bool("clear-cursor", false, "drop the resume cursor before running")
		fIfStale = flag.Bool("if-stale", false, "only refresh when the cache is older than CORE_CIRCLES_UPDATE_INTERVAL")
		fStore   = flag.String("store", "", "cache store: memory | redis | pg, empty uses CORE_CIRCLES_STORE; memory must be explicit")
	)
	flag.Parse()

	mode, err := domain.ParseMode(*fMode)
	if err != nil {
		l.Error().Err(err).Msg("bad -mode")
		return 2
	}
	kind, err := storeKind(*fStore, opts.Store)
	if err != nil {
		l.Error().Err(err).Msg("bad -store")
		return 2
	}
	opts.Store = kind

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, tcmod.StoreConfig(root, appName, opts.Store), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.FromStore(core, st)
	deps.Metrics = prometheus.NewRegistry()
	tc, err := tcmod.New(ctx, deps, opts)
	if err != nil {
		l.Error().Err(err).Msg("trust cache module failed")
		return 1
	}

	req := domain.RefreshRequest{Mode: mode, BatchSize: *fBatch, MaxUsers: *fMax}
	sched := service.NewScheduler(tc.Service(), req)

	if *fClear {
		if err := sched.ClearCursor(ctx); err != nil {
			l.Error().Err(err).Msg("clear cursor failed")
			return 1
		}
	}

	var (
		res domain.IngestionResult
		ran = true
	)
	if *fIfStale {
		res, ran, err = sched.RunIfStale(ctx)
	} else {
		res, err = sched.Refresh(ctx, req)
	}
	if !ran {
		l.Info().Msg("cache is fresh; nothing to do")
		return 0
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if err != nil || !res.Success {
		return 1
	}
	return 0
}

// storeKind picks the cache store from the flag, falling back to the configured one
// a memory store is dropped on exit, so it is only accepted when the flag names it
func storeKind(flagVal, configured string) (string, error) {
	kind := configured
	if flagVal != "" {
		kind = flagVal
	}
	switch kind {
	case tcmod.StoreRedis, tcmod.StorePG:
		return kind, nil
	case tcmod.StoreMemory:
		if flagVal == tcmod.StoreMemory {
			return kind, nil
		}
		return "", perr.InvalidArgf("memory store is lost on exit; pass -store=redis|pg, or -store=memory to run anyway")
	}
	return "", perr.InvalidArgf("unknown store %q", kind)
}
