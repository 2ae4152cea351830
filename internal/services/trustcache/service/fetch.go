package service

import (
	"context"

	"circlesync/internal/adapters/ingest/circles"
	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	"circlesync/internal/services/trustcache/domain"
)

// run is the state of one paging walk
type run struct {
	mode     domain.Mode
	limit    int
	maxNew   int
	existing map[string]domain.Participant

	seen    map[string]struct{}
	fresh   []domain.Participant
	updates map[string]domain.Participant
	cursor  *circles.Cursor
	pages   int

	// exhausted is set when the remote reported no further page
	exhausted bool
}

func newRun(mode domain.Mode, limit, maxNew int, existing []domain.Participant, start *circles.Cursor) *run {
	r := &run{
		mode:     mode,
		limit:    limit,
		maxNew:   maxNew,
		existing: map[string]domain.Participant{},
		seen:     map[string]struct{}{},
		updates:  map[string]domain.Participant{},
		cursor:   start,
	}
	for _, p := range existing {
		r.existing[p.Key()] = p
	}
	return r
}

func (r *run) capReached() bool { return len(r.fresh) >= r.maxNew }

// walk pages newest to oldest from r.cursor until the stream ends, the cap is hit
// or MaxEmptyBatches pages in a row add nothing
// MaxEmptyBatches consecutive page failures abort the walk
func (s *Svc) walk(ctx context.Context, r *run) error {
	log := logger.C(ctx)
	empties, failures := 0, 0
	for !r.capReached() {
		page, err := s.q.Query(ctx, circles.QueryRequest{
			Namespace: s.cfg.Namespace,
			Table:     s.cfg.AvatarTable,
			Columns:   []string{circles.ColBlock, circles.ColTx, circles.ColLog, "timestamp", "avatar"},
			Filter:    []circles.Filter{circles.Equals("type", s.cfg.AvatarType)},
			Order:     circles.NewestFirst(),
			Limit:     r.limit,
			Cursor:    r.cursor,
		})
		if err != nil {
			failures++
			empties++
			log.Warn().Err(err).Int("failures", failures).Msg("registration page failed")
			if failures >= s.cfg.MaxEmptyBatches {
				return perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "registration pages failed %d times in a row", failures)
			}
			if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
				return perr.Wrap(err, perr.ErrorCodeRemoteQuery, "run cancelled")
			}
			continue
		}
		failures = 0
		r.pages++
		s.metrics.IncPages()

		added, err := s.consume(ctx, r, page.Rows)
		if err != nil {
			return err
		}
		if added == 0 {
			empties++
		} else {
			empties = 0
		}
		log.Debug().
			Int("page", r.pages).
			Int("rows", len(page.Rows)).
			Int("added", added).
			Int("updates", len(r.updates)).
			Int("empty_streak", empties).
			Msg("registration page")

		if page.Next == nil {
			r.exhausted = true
			log.Debug().Int("pages", r.pages).Msg("registration stream exhausted")
			return nil
		}
		if empties >= s.cfg.MaxEmptyBatches {
			log.Debug().Int("empty_streak", empties).Msg("stopping after empty pages")
			return nil
		}
		if r.capReached() {
			break
		}
		if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
			return perr.Wrap(err, perr.ErrorCodeRemoteQuery, "run cancelled")
		}
	}
	log.Debug().Int("cap", r.maxNew).Msg("user cap reached")
	return nil
}

// consume enriches the candidate rows of one page and advances the cursor row by row
// it stops before the first new participant past the cap so a resume repeats it
func (s *Svc) consume(ctx context.Context, r *run, rows []circles.Row) (int, error) {
	added := 0
	for _, row := range rows {
		addr := row.Str("avatar")
		k := domain.Key(addr)
		_, dup := r.seen[k]
		_, known := r.existing[k]

		switch {
		case k == "" || dup:
		case known:
			r.seen[k] = struct{}{}
			p, err := s.enrich(ctx, row, addr)
			if err != nil {
				return added, err
			}
			r.updates[k] = p
		default:
			if r.capReached() {
				return added, nil
			}
			r.seen[k] = struct{}{}
			p, err := s.enrich(ctx, row, addr)
			if err != nil {
				return added, err
			}
			r.fresh = append(r.fresh, p)
			added++
		}
		if pos, ok := circles.PositionOf(row); ok {
			r.cursor = &pos
		}
	}
	return added, nil
}

// enrich counts trusts for one registration row and classifies it
func (s *Svc) enrich(ctx context.Context, row circles.Row, addr string) (domain.Participant, error) {
	tc := s.CountTrusts(ctx, addr)
	c := s.cls.Classify(tc.Incoming)
	// no timestamp leaves ObservedAt zero, which merge treats as unordered
	observed, _ := row.Time("timestamp")
	p := domain.Participant{
		Address:            domain.Key(addr),
		IncomingTrustCount: tc.Incoming,
		OutgoingTrustCount: tc.Outgoing,
		Verified:           c.Verified,
		Status:             c.Status,
		ObservedAt:         observed,
	}
	if err := s.sleep(ctx, s.cfg.EnrichDelay); err != nil {
		return p, perr.Wrap(err, perr.ErrorCodeRemoteQuery, "run cancelled")
	}
	return p, nil
}
