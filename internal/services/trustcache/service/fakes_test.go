package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"circlesync/internal/adapters/ingest/circles"
	"circlesync/internal/platform/testkit"
	"circlesync/internal/services/trustcache/domain"
	"circlesync/internal/services/trustcache/repo"
)

// step is one scripted registration page response
type step struct {
	rows []circles.Row
	next bool
	err  error
}

// fakeRemote scripts registration pages and answers trust queries from an edge list
// with stream set, registration pages are cut from it by cursor and limit instead of steps
type fakeRemote struct {
	mu       sync.Mutex
	steps    []step
	stream   []circles.Row
	cursors  []*circles.Cursor
	edges    [][2]string
	trustErr map[string]bool
	trustN   int
}

func (f *fakeRemote) Query(_ context.Context, q circles.QueryRequest) (circles.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if q.Table == "TrustRelations" {
		f.trustN++
		col, addr := q.Filter[0].Column, q.Filter[0].Value.(string)
		if f.trustErr[addr] {
			return circles.Page{}, errors.New("trust backend down")
		}
		var rows []circles.Row
		for _, e := range f.edges {
			if (col == "truster" && domain.Key(e[0]) == addr) || (col == "trustee" && domain.Key(e[1]) == addr) {
				rows = append(rows, circles.Row{"truster": e[0], "trustee": e[1]})
			}
			if len(rows) == q.Limit {
				break
			}
		}
		return circles.Page{Rows: rows}, nil
	}

	if q.Cursor != nil {
		c := *q.Cursor
		f.cursors = append(f.cursors, &c)
	} else {
		f.cursors = append(f.cursors, nil)
	}
	if f.stream != nil {
		return f.page(q), nil
	}
	if len(f.steps) == 0 {
		return circles.Page{}, nil
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	if s.err != nil {
		return circles.Page{}, s.err
	}
	p := circles.Page{Rows: s.rows}
	if s.next && len(s.rows) > 0 {
		if c, ok := circles.PositionOf(s.rows[len(s.rows)-1]); ok {
			p.Next = &c
		}
	}
	return p, nil
}

// page serves rows strictly older than q.Cursor, newest first; a full page carries Next
func (f *fakeRemote) page(q circles.QueryRequest) circles.Page {
	var p circles.Page
	for _, r := range f.stream {
		pos, ok := circles.PositionOf(r)
		if !ok || (q.Cursor != nil && !pos.Before(*q.Cursor)) {
			continue
		}
		p.Rows = append(p.Rows, r)
		if len(p.Rows) == q.Limit {
			p.Next = &pos
			break
		}
	}
	return p
}

func (f *fakeRemote) requested() []*circles.Cursor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*circles.Cursor(nil), f.cursors...)
}

// seq hands out descending positions so generated rows follow the remote order
type seq struct{ block int64 }

func newSeq() *seq { return &seq{block: 1_000_000} }

func (s *seq) row(addr string) circles.Row {
	s.block--
	return circles.Row{
		"avatar":         addr,
		circles.ColBlock: s.block,
		circles.ColTx:    int64(0),
		circles.ColLog:   int64(0),
		"timestamp":      int64(1_700_000_000),
	}
}

// rowAt builds a registration row at an explicit block
func rowAt(addr string, block int64) circles.Row {
	return circles.Row{
		"avatar":         addr,
		circles.ColBlock: block,
		circles.ColTx:    int64(0),
		circles.ColLog:   int64(0),
		"timestamp":      int64(1_700_000_000),
	}
}

func (s *seq) rows(prefix string, n int) []circles.Row {
	out := make([]circles.Row, n)
	for i := range out {
		out[i] = s.row(fmt.Sprintf("%s%05d", prefix, i))
	}
	return out
}

// failingStore fails writes to one key
type failingStore struct {
	*repo.Memory
	failKey string
}

func (f failingStore) Set(ctx context.Context, key string, v []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, v)
}

type harness struct {
	svc    *Svc
	remote *fakeRemote
	cache  *repo.Cache
	kv     *repo.Memory
	clock  *testkit.Clock
}

func newHarness(t *testing.T, remote *fakeRemote, cfg Config) *harness {
	t.Helper()
	kv := repo.NewMemory()
	return newHarnessWithStore(t, remote, cfg, kv, kv)
}

func newHarnessWithStore(t *testing.T, remote *fakeRemote, cfg Config, kv *repo.Memory, store domain.Store) *harness {
	t.Helper()
	cache := repo.New(store, repo.KeysFor("test"))
	svc := New(remote, cache, cfg, nil)
	clk := testkit.NewClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc.now = clk.Now
	svc.sleep = clk.Sleep
	n := 0
	svc.newID = func() string { n++; return fmt.Sprintf("run-%d", n) }
	return &harness{svc: svc, remote: remote, cache: cache, kv: kv, clock: clk}
}

func (h *harness) seed(t *testing.T, users []domain.Participant, cur *domain.Cursor) {
	t.Helper()
	ctx := context.Background()
	if err := h.cache.SaveSnapshot(ctx, domain.NewSnapshot(users, h.clock.Now())); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	if cur != nil {
		if err := h.cache.SaveCursor(ctx, domain.CursorState{Cursor: *cur, UsersCount: len(users), Timestamp: h.clock.Now()}); err != nil {
			t.Fatalf("seed cursor: %v", err)
		}
	}
}

func (h *harness) snapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	s, _, err := h.cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func assertUnique(t *testing.T, users []domain.Participant) {
	t.Helper()
	seen := map[string]bool{}
	for _, u := range users {
		if seen[u.Key()] {
			t.Fatalf("duplicate participant %q", u.Address)
		}
		seen[u.Key()] = true
	}
}
