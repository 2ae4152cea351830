package service

import (
	"context"

	"circlesync/internal/adapters/ingest/circles"
	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"
)

// TrustCounts is the number of trust relations pointing at and away from a participant
type TrustCounts struct {
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}

// CountTrusts counts non self trust relations in both directions
// each direction reads at most TrustQueryLimit rows so larger sets are undercounted
// a remote failure yields zero counts and is only logged
func (s *Svc) CountTrusts(ctx context.Context, address string) TrustCounts {
	in, err := s.countDirection(ctx, "trustee", address)
	if err == nil {
		var out int
		if out, err = s.countDirection(ctx, "truster", address); err == nil {
			return TrustCounts{Incoming: in, Outgoing: out}
		}
	}
	logger.C(ctx).Warn().Err(err).Str("address", address).Msg("trust count failed; using zero")
	return TrustCounts{}
}

func (s *Svc) countDirection(ctx context.Context, col, address string) (int, error) {
	page, err := s.q.Query(ctx, circles.QueryRequest{
		Namespace: s.cfg.Namespace,
		Table:     s.cfg.TrustTable,
		Columns:   []string{"truster", "trustee"},
		Filter:    []circles.Filter{circles.Equals(col, domain.Key(address))},
		Limit:     s.cfg.TrustQueryLimit,
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range page.Rows {
		if domain.Key(r.Str("truster")) == domain.Key(r.Str("trustee")) {
			continue
		}
		n++
	}
	if len(page.Rows) >= s.cfg.TrustQueryLimit {
		logger.C(ctx).Debug().
			Str("address", address).
			Str("direction", col).
			Int("limit", s.cfg.TrustQueryLimit).
			Msg("trust relations hit query limit; count is a lower bound")
	}
	return n, nil
}
