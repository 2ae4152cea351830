package repo

import (
	"context"
	"testing"
	"time"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/store/rds"
	"circlesync/internal/platform/testkit"

	"github.com/redis/go-redis/v9"
)

func TestRedis_UnreachableIsUnavailable(t *testing.T) {
	t.Parallel()

	c := rds.Wrap(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond}))
	t.Cleanup(func() { _ = c.Close() })
	s := NewRedis(c, 0)

	ctx := context.Background()
	if _, _, err := s.Get(ctx, "k"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Get err = %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Set err = %v", err)
	}
	if err := s.Delete(ctx, "k"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Delete err = %v", err)
	}
	testkit.MustPanic(t, func() { _ = NewRedis(nil, 0) })
}
