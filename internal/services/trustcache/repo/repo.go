// Package repo provides the typed trust cache over a key value store and its backends
package repo

import (
	"context"
	"encoding/json"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/services/trustcache/domain"
)

// Keys names the three cache entries
type Keys struct {
	Users      string
	LastUpdate string
	Cursor     string
}

// KeysFor derives the cache keys under a namespace prefix such as "circles"
func KeysFor(prefix string) Keys {
	if prefix == "" {
		prefix = "circles"
	}
	return Keys{
		Users:      prefix + "-users-data",
		LastUpdate: prefix + "-last-update",
		Cursor:     prefix + "-fetch-cursor",
	}
}

// Cache reads and writes typed cache documents as JSON
type Cache struct {
	kv   domain.Store
	keys Keys
}

// New wraps a store with the given keys
func New(kv domain.Store, keys Keys) *Cache {
	return &Cache{kv: kv, keys: keys}
}

// Keys returns the keys in use
func (c *Cache) Keys() Keys { return c.keys }

// Snapshot loads the user snapshot, ok is false when none is stored
func (c *Cache) Snapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	var s domain.Snapshot
	ok, err := c.get(ctx, c.keys.Users, &s)
	if ok && s.Users == nil {
		s.Users = []domain.Participant{}
	}
	return s, ok, err
}

// SaveSnapshot replaces the user snapshot in a single write
func (c *Cache) SaveSnapshot(ctx context.Context, s domain.Snapshot) error {
	return c.set(ctx, c.keys.Users, s)
}

// LastUpdate loads the last update metadata
func (c *Cache) LastUpdate(ctx context.Context) (domain.LastUpdate, bool, error) {
	var m domain.LastUpdate
	ok, err := c.get(ctx, c.keys.LastUpdate, &m)
	return m, ok, err
}

// SaveLastUpdate writes the last update metadata
func (c *Cache) SaveLastUpdate(ctx context.Context, m domain.LastUpdate) error {
	return c.set(ctx, c.keys.LastUpdate, m)
}

// Cursor loads the persisted resume point
func (c *Cache) Cursor(ctx context.Context) (domain.CursorState, bool, error) {
	var cs domain.CursorState
	ok, err := c.get(ctx, c.keys.Cursor, &cs)
	return cs, ok, err
}

// SaveCursor writes the resume point
func (c *Cache) SaveCursor(ctx context.Context, cs domain.CursorState) error {
	return c.set(ctx, c.keys.Cursor, cs)
}

// ClearCursor removes the resume point so the next run starts from the newest event
func (c *Cache) ClearCursor(ctx context.Context) error {
	if err := c.kv.Delete(ctx, c.keys.Cursor); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeCacheStore, "delete %s", c.keys.Cursor)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, v any) (bool, error) {
	b, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeCacheStore, "get %s", key)
	}
	if !ok || len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeCacheStore, "decode %s", key)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeCacheStore, "encode %s", key)
	}
	if err := c.kv.Set(ctx, key, b); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeCacheStore, "set %s", key)
	}
	return nil
}
