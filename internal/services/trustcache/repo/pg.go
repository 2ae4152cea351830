package repo

import (
	"context"
	"errors"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/store"

	"github.com/jackc/pgx/v5"
)

const (
	pgSchema = `CREATE TABLE IF NOT EXISTS circles_cache (
	key        text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	pgGet    = `SELECT value FROM circles_cache WHERE key = $1`
	pgUpsert = `INSERT INTO circles_cache (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	pgDelete = `DELETE FROM circles_cache WHERE key = $1`
)

// PG stores cache documents as jsonb rows in circles_cache
type PG struct {
	db store.RowQuerier
}

// NewPG wraps a sql seam; call EnsureSchema once before use
func NewPG(db store.RowQuerier) *PG {
	if db == nil {
		panic("repo.NewPG requires a non nil querier")
	}
	return &PG{db: db}
}

// EnsureSchema creates the cache table when missing
func (s *PG) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgSchema); err != nil {
		return perr.FromPostgres(err, "create circles_cache")
	}
	return nil
}

// Get implements domain.Store, no row is a miss
func (s *PG) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := s.db.QueryRow(ctx, pgGet, key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.FromPostgres(err, "select circles_cache")
	}
	return b, true, nil
}

// Set implements domain.Store
func (s *PG) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, pgUpsert, key, value); err != nil {
		return perr.FromPostgres(err, "upsert circles_cache")
	}
	return nil
}

// Delete implements domain.Store
func (s *PG) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, pgDelete, key); err != nil {
		return perr.FromPostgres(err, "delete circles_cache")
	}
	return nil
}
