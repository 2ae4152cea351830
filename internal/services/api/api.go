// Package api assembles the HTTP API from its modules
package api

import (
	"time"

	"circlesync/internal/modkit"
	"circlesync/internal/modkit/httpkit"
	"circlesync/internal/modkit/module"
	"circlesync/internal/platform/logger"
	"circlesync/internal/platform/net/middleware"

	metamod "circlesync/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Service string
	Deps    modkit.Deps
	CORS    middleware.CORSOptions
	Slow    time.Duration
}

// Mount mounts the meta module plus mods onto r behind one common middleware stack
// request latencies are registered on opt.Deps.Registerer, so call Mount once per registry
func Mount(r httpkit.Router, opt Options, mods ...module.Module) {
	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORS:     opt.CORS,
		Slow:     opt.Slow,
		Requests: middleware.NewRequestHistogram(opt.Deps.Registerer()),
	})

	all := append([]module.Module{metamod.New(opt.Service, opt.Deps)}, mods...)
	log := logger.Named("api")
	httpkit.MountUnder(r, "", stack, func(g httpkit.Router) {
		for _, m := range all {
			m.MountRoutes(g)
			log.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	})
}
