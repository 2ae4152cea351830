// Package module wires the trust cache service, its store and its routes
package module

import (
	"context"
	"net/http"

	"circlesync/internal/adapters/ingest/circles"
	"circlesync/internal/modkit"
	"circlesync/internal/modkit/httpkit"
	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"
	tchttp "circlesync/internal/services/trustcache/http"
	"circlesync/internal/services/trustcache/metrics"
	"circlesync/internal/services/trustcache/repo"
	"circlesync/internal/services/trustcache/service"
)

// Module defines the trust cache module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	opts  Options
	svc   *service.Svc
	ports Ports
}

// New constructs the module; opts usually comes from FromConfig(deps.Cfg)
// the pg store creates its table before returning
func New(ctx context.Context, deps modkit.Deps, opts Options, mopts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("trustcache"), modkit.WithPrefix("/circles")}, mopts...)...)

	kv, err := openStore(ctx, deps, opts)
	if err != nil {
		return nil, err
	}

	m := metrics.New(deps.Registerer())
	client := circles.NewClient(circles.Options{
		URL:        opts.RPCURL,
		Timeout:    opts.RPCTimeout,
		MaxRetries: opts.RPCRetries,
		Observe:    m.ObserveQuery,
	})
	svc := service.New(client, repo.New(kv, repo.KeysFor(opts.KeyPrefix)), opts.Service, m)
	sched := service.NewScheduler(svc, domain.RefreshRequest{Mode: domain.ModeAuto})

	logger.Named("trustcache").Info().
		Str("store", opts.Store).
		Str("rpc", opts.RPCURL).
		Str("prefix", b.Prefix).
		Msg("trust cache module ready")

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		opts:   opts,
		svc:    svc,
		ports:  Ports{Refresher: sched, Lookup: svc, Scheduler: sched},
	}, nil
}

func openStore(ctx context.Context, deps modkit.Deps, opts Options) (domain.Store, error) {
	switch opts.Store {
	case "", StoreMemory:
		return repo.NewMemory(), nil
	case StoreRedis:
		if deps.RDS == nil {
			return nil, perr.Unavailablef("trust cache store redis requested but redis is not configured")
		}
		return repo.NewRedis(deps.RDS, opts.CacheTTL), nil
	case StorePG:
		if deps.PG == nil {
			return nil, perr.Unavailablef("trust cache store pg requested but postgres is not configured")
		}
		s := repo.NewPG(deps.PG)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, perr.InvalidArgf("unknown trust cache store %q", opts.Store)
	}
}

// MountRoutes mounts the module routes under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(sub httpkit.Router) {
		tchttp.Register(sub, m.ports.Refresher, m.ports.Lookup)
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Service returns the underlying service
func (m *Module) Service() *service.Svc { return m.svc }
