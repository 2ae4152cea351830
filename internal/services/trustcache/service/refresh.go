package service

import (
	"context"

	"circlesync/internal/adapters/ingest/circles"
	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"
)

// plan is the resolved starting point of one run
type plan struct {
	mode     domain.Mode
	existing []domain.Participant
	cursor   *circles.Cursor
}

// resolve picks the effective mode; incremental needs both a cursor and a non empty snapshot
// unreadable cache entries count as absent
func (s *Svc) resolve(ctx context.Context, want domain.Mode) plan {
	if want == domain.ModeFull {
		return plan{mode: domain.ModeFull}
	}
	log := logger.C(ctx)
	snap, okSnap, err := s.cache.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot unreadable; falling back to full")
		return plan{mode: domain.ModeFull}
	}
	cs, okCur, err := s.cache.Cursor(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cursor unreadable; falling back to full")
		return plan{mode: domain.ModeFull}
	}
	if !okSnap || len(snap.Users) == 0 || !okCur {
		return plan{mode: domain.ModeFull}
	}
	c := circles.Cursor(cs.Cursor)
	return plan{mode: domain.ModeIncremental, existing: snap.Users, cursor: &c}
}

// Refresh runs one ingestion pass and persists the next snapshot in a single write
// on failure the previous cache is left untouched and the returned error is also in the result
func (s *Svc) Refresh(ctx context.Context, req domain.RefreshRequest) (domain.IngestionResult, error) {
	runID := req.RunID
	if runID == "" {
		runID = s.newID()
	}
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)
	start := s.now()

	want := req.Mode
	if want == "" {
		want = domain.ModeAuto
	}
	p := s.resolve(ctx, want)
	res := domain.IngestionResult{RunID: runID, Mode: p.mode}

	fail := func(err error) (domain.IngestionResult, error) {
		res.Success = false
		res.Error = err.Error()
		s.metrics.ObserveRun(string(p.mode), false, s.now().Sub(start))
		log.Error().Err(err).Str("mode", string(p.mode)).Int("pages", res.Pages).Msg("refresh failed")
		return res, err
	}

	batch := req.BatchSize
	if batch <= 0 {
		batch = s.cfg.BatchSize
	}
	maxNew := req.MaxUsers
	if maxNew <= 0 {
		maxNew = s.cfg.MaxUsers
		if p.mode == domain.ModeIncremental {
			maxNew = s.cfg.NewUserCap
		}
	}

	log.Info().
		Str("requested", string(want)).
		Str("mode", string(p.mode)).
		Int("batch", batch).
		Int("max_new", maxNew).
		Int("existing", len(p.existing)).
		Msg("refresh started")

	r := newRun(p.mode, batch, maxNew, p.existing, p.cursor)
	err := s.walk(ctx, r)
	res.Pages = r.pages
	if err != nil {
		return fail(err)
	}

	observed := append([]domain.Participant(nil), r.fresh...)
	for _, u := range r.updates {
		observed = append(observed, u)
	}
	users, newCount, updated := merge(p.existing, observed)

	now := s.now().UTC()
	snap := domain.NewSnapshot(users, now)
	if err := s.cache.SaveSnapshot(ctx, snap); err != nil {
		return fail(err)
	}
	if err := s.cache.SaveLastUpdate(ctx, domain.LastUpdate{Timestamp: now, UsersCount: snap.TotalCount}); err != nil {
		return fail(perr.Wrap(err, perr.ErrorCodeCacheStore, "snapshot saved but last update write failed"))
	}
	switch {
	case r.exhausted:
		// nothing older is left to resume into, the next auto run starts from the head
		if err := s.cache.ClearCursor(ctx); err != nil {
			log.Warn().Err(err).Msg("cursor clear failed; next auto run may resume past the end")
		}
	case r.cursor != nil && r.pages > 0:
		cs := domain.CursorState{Cursor: domain.Cursor(*r.cursor), UsersCount: snap.TotalCount, Timestamp: now}
		if err := s.cache.SaveCursor(ctx, cs); err != nil {
			log.Warn().Err(err).Str("cursor", r.cursor.String()).Msg("cursor write failed; next run may repeat work")
		}
	}

	res.Success = true
	res.TotalCount = snap.TotalCount
	res.NewCount = newCount
	res.UpdatedCount = updated

	verified := 0
	for _, u := range users {
		if u.Verified {
			verified++
		}
	}
	s.metrics.AddRecords(newCount, updated)
	s.metrics.SetCached(verified, snap.TotalCount-verified)
	s.metrics.ObserveRun(string(p.mode), true, s.now().Sub(start))

	log.Info().
		Str("mode", string(p.mode)).
		Int("pages", r.pages).
		Int("total", res.TotalCount).
		Int("new", newCount).
		Int("updated", updated).
		Dur("took", s.now().Sub(start)).
		Msg("refresh finished")
	return res, nil
}

// ClearCursor drops the resume point so the next auto run is a full fetch
func (s *Svc) ClearCursor(ctx context.Context) error {
	if err := s.cache.ClearCursor(ctx); err != nil {
		return err
	}
	logger.C(ctx).Info().Msg("fetch cursor cleared")
	return nil
}
