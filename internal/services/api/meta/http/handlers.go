// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"circlesync/internal/core/version"
	"circlesync/internal/modkit/httpkit"
)

// Check probes one dependency
type Check func(stdctx.Context) error

// Deps are the handler dependencies
// a nil Check is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      map[string]Check
	Now         func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	overall := "ok"
	checks := make([]ReadyCheck, 0, len(h.deps.Checks))
	for _, name := range []string{"pg", "redis"} {
		c, ok := h.deps.Checks[name]
		if !ok || c == nil {
			checks = append(checks, ReadyCheck{Name: name, Status: "skipped"})
			continue
		}
		if err := c(ctx); err != nil {
			overall = "fail"
			checks = append(checks, ReadyCheck{Name: name, Status: "fail", Error: err.Error()})
			continue
		}
		checks = append(checks, ReadyCheck{Name: name, Status: "ok"})
	}

	resp := ReadyResponse{Status: overall, Checks: checks, Now: h.deps.Now().UTC().Format(time.RFC3339)}
	if overall != "ok" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: resp}, nil
	}
	return resp, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.deps.Now().Sub(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}
