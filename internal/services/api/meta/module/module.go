// Package module wires meta endpoints into the API
package module

import (
	"net/http"
	"time"

	"circlesync/internal/modkit"
	"circlesync/internal/modkit/httpkit"
	"circlesync/internal/platform/store"

	metahttp "circlesync/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   metahttp.Deps
}

// New constructs a meta module that probes the backends present in deps
func New(service string, deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	checks := map[string]metahttp.Check{}
	if p, ok := deps.PG.(store.Pinger); ok {
		checks["pg"] = p.Ping
	}
	if deps.RDS != nil {
		checks["redis"] = deps.RDS.Health
	}

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		deps: metahttp.Deps{
			ServiceName: service,
			StartedAt:   time.Now(),
			Checks:      checks,
		},
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(sub httpkit.Router) {
		metahttp.Register(sub, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
