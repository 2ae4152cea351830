package service

import (
	"context"
	"sync"
	"time"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"

	"github.com/google/uuid"
)

// Scheduler serializes refresh runs and cursor resets against one cache
type Scheduler struct {
	svc Service
	req domain.RefreshRequest
	mu  sync.Mutex
}

// NewScheduler wraps svc; req is what Loop runs on each due tick
func NewScheduler(svc Service, req domain.RefreshRequest) *Scheduler {
	if svc == nil {
		panic("trustcache.Scheduler requires a service")
	}
	if req.Mode == "" {
		req.Mode = domain.ModeAuto
	}
	return &Scheduler{svc: svc, req: req}
}

// Refresh runs one pass unless another one holds the lock, in which case it returns a conflict
func (s *Scheduler) Refresh(ctx context.Context, req domain.RefreshRequest) (domain.IngestionResult, error) {
	if !s.mu.TryLock() {
		return domain.IngestionResult{}, perr.Conflictf("refresh already in progress")
	}
	defer s.mu.Unlock()
	return s.svc.Refresh(ctx, req)
}

// Start takes the lock and runs one pass in the background on a ctx detached from the caller
// it returns the run id right away, or a conflict when another run holds the lock
func (s *Scheduler) Start(ctx context.Context, req domain.RefreshRequest) (string, error) {
	if !s.mu.TryLock() {
		return "", perr.Conflictf("refresh already in progress")
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	ctx = logger.WithRun(context.WithoutCancel(ctx), req.RunID)
	go func() {
		defer s.mu.Unlock()
		if _, err := s.svc.Refresh(ctx, req); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("background refresh failed")
		}
	}()
	return req.RunID, nil
}

// ClearCursor resets the resume point unless a run is in progress
func (s *Scheduler) ClearCursor(ctx context.Context) error {
	if !s.mu.TryLock() {
		return perr.Conflictf("refresh in progress; cursor not cleared")
	}
	defer s.mu.Unlock()
	return s.svc.ClearCursor(ctx)
}

// RunIfStale refreshes only when the cache is due
// ran is false when the cache was fresh or another run was active
func (s *Scheduler) RunIfStale(ctx context.Context) (res domain.IngestionResult, ran bool, err error) {
	if !s.svc.NeedsRefresh(ctx) {
		return res, false, nil
	}
	res, err = s.Refresh(ctx, s.req)
	if perr.IsCode(err, perr.ErrorCodeConflict) {
		return res, false, nil
	}
	return res, true, err
}

// Loop checks staleness now and then every interval until ctx ends
// failed runs are logged and retried on the next tick
func (s *Scheduler) Loop(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return perr.InvalidArgf("scheduler interval must be positive, got %s", every)
	}
	log := logger.Named("scheduler")
	log.Info().Dur("every", every).Msg("refresh scheduler started")

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if _, ran, err := s.RunIfStale(ctx); err != nil {
			log.Warn().Err(err).Msg("scheduled refresh failed")
		} else if ran {
			log.Debug().Msg("scheduled refresh done")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("refresh scheduler stopped")
			return nil
		case <-t.C:
		}
	}
}
