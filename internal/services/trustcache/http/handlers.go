// Package http provides the trust cache endpoints
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"

	"circlesync/internal/modkit/httpkit"
	"circlesync/internal/services/trustcache/domain"
)

// RefreshBody is the POST /refresh payload
// Wait blocks until the run finishes instead of answering 202 once it started
type RefreshBody struct {
	Mode      string `json:"mode"       validate:"omitempty,oneof=full incremental auto"`
	BatchSize int    `json:"batch_size" validate:"omitempty,min=1,max=1000"`
	MaxUsers  int    `json:"max_users"  validate:"omitempty,min=1"`
	Wait      bool   `json:"wait"`
}

// RefreshStarted is the 202 payload of a background refresh
type RefreshStarted struct {
	RunID string      `json:"run_id"`
	Mode  domain.Mode `json:"mode"`
}

// UsersResponse is the GET /users payload
type UsersResponse struct {
	Items []domain.Participant `json:"items"`
	Total int                  `json:"total"`
}

// Register mounts the trust cache routes
// ref should be the scheduler so HTTP triggers are serialized with background runs
func Register(r httpkit.Router, ref domain.RunnerPort, look domain.LookupPort) {
	h := &handlers{ref: ref, look: look}

	httpkit.Get(r, "/status/{address}", h.status)
	httpkit.Get(r, "/users", h.users)
	httpkit.Get(r, "/stats", h.stats)
	httpkit.PostJSON(r, "/refresh", h.refresh)
	httpkit.Delete(r, "/cursor", h.clearCursor)
}

type handlers struct {
	ref  domain.RunnerPort
	look domain.LookupPort
}

func (h *handlers) status(r *stdhttp.Request) (any, error) {
	addr := httpkit.URLParam(r, "address")
	if err := httpkit.Var("address", addr, "required"); err != nil {
		return nil, err
	}
	return h.look.CheckStatus(r.Context(), addr), nil
}

func (h *handlers) users(r *stdhttp.Request) (any, error) {
	raw := r.URL.Query().Get("verified")
	if err := httpkit.Var("verified", raw, "omitempty,boolean"); err != nil {
		return nil, err
	}
	users, err := h.look.CachedUsers(r.Context())
	if err != nil {
		return nil, err
	}
	if raw != "" {
		want, _ := strconv.ParseBool(raw)
		kept := make([]domain.Participant, 0, len(users))
		for _, u := range users {
			if u.Verified == want {
				kept = append(kept, u)
			}
		}
		users = kept
	}
	return UsersResponse{Items: users, Total: len(users)}, nil
}

func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.look.Statistics(r.Context()), nil
}

func (h *handlers) refresh(r *stdhttp.Request, in RefreshBody) (any, error) {
	mode, err := domain.ParseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	req := domain.RefreshRequest{Mode: mode, BatchSize: in.BatchSize, MaxUsers: in.MaxUsers}
	if !in.Wait {
		id, err := h.ref.Start(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return httpkit.Accepted(RefreshStarted{RunID: id, Mode: mode}), nil
	}

	// a client that gives up does not cancel the run it is waiting on
	res, err := h.ref.Refresh(context.WithoutCancel(r.Context()), req)
	if err != nil {
		return httpkit.ErrorWith(err, res), nil
	}
	return res, nil
}

func (h *handlers) clearCursor(r *stdhttp.Request) (any, error) {
	if err := h.ref.ClearCursor(r.Context()); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
