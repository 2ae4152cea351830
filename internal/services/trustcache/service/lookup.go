package service

import (
	"context"

	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"
)

// CheckStatus answers from the cached snapshot only
// an unreadable cache behaves like an empty one
func (s *Svc) CheckStatus(ctx context.Context, address string) domain.StatusCheck {
	snap, ok, err := s.cache.Snapshot(ctx)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("status lookup on unreadable cache")
		return domain.StatusCheck{}
	}
	if !ok {
		return domain.StatusCheck{}
	}
	k := domain.Key(address)
	if k == "" {
		return domain.StatusCheck{}
	}
	for _, p := range snap.Users {
		if p.Key() != k {
			continue
		}
		return domain.StatusCheck{
			Found:        true,
			Verified:     p.Verified,
			Registered:   true,
			TrustCount:   p.IncomingTrustCount,
			NeededTrusts: s.cls.NeededTrusts(p.IncomingTrustCount),
		}
	}
	return domain.StatusCheck{}
}

// CachedUsers returns the snapshot's participants, empty when nothing is cached
func (s *Svc) CachedUsers(ctx context.Context) ([]domain.Participant, error) {
	snap, ok, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Participant{}, nil
	}
	return snap.Users, nil
}

// Statistics summarizes the snapshot, last update and cursor
func (s *Svc) Statistics(ctx context.Context) domain.Statistics {
	log := logger.C(ctx)
	var st domain.Statistics

	snap, ok, err := s.cache.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("statistics on unreadable snapshot")
	}
	if ok {
		st.TotalUsers = len(snap.Users)
		for _, p := range snap.Users {
			if p.Verified {
				st.VerifiedUsers++
			}
		}
		st.RegisteredUsers = st.TotalUsers - st.VerifiedUsers
	}

	if m, ok, err := s.cache.LastUpdate(ctx); err != nil {
		log.Warn().Err(err).Msg("statistics on unreadable last update")
	} else if ok {
		ts := m.Timestamp
		st.LastUpdate = &ts
		st.CacheAgeSeconds = int64(s.now().Sub(ts).Seconds())
	}

	if cs, ok, err := s.cache.Cursor(ctx); err != nil {
		log.Warn().Err(err).Msg("statistics on unreadable cursor")
	} else if ok {
		st.Cursor = &cs
	}
	return st
}

// NeedsRefresh reports whether the last successful write is missing or older than UpdateInterval
func (s *Svc) NeedsRefresh(ctx context.Context) bool {
	m, ok, err := s.cache.LastUpdate(ctx)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("last update unreadable; refresh due")
		return true
	}
	if !ok {
		return true
	}
	return s.now().Sub(m.Timestamp) >= s.cfg.UpdateInterval
}
