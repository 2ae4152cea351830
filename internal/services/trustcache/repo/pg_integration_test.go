//go:build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"circlesync/internal/platform/store"
	"circlesync/internal/services/trustcache/domain"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
}

func TestPG_CacheRoundTrip_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "circlesync-pg-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	kv := NewPG(st.PG)
	if err := kv.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	c := New(kv, KeysFor("it"))

	at := time.Now().UTC().Truncate(time.Second)
	snap := domain.NewSnapshot([]domain.Participant{{Address: "0xAA", IncomingTrustCount: 1}}, at)
	for i := 0; i < 2; i++ {
		if err := c.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot #%d: %v", i, err)
		}
	}
	got, ok, err := c.Snapshot(ctx)
	if err != nil || !ok || got.TotalCount != 1 || !got.LastUpdate.Equal(at) {
		t.Fatalf("Snapshot = %+v ok=%v err=%v", got, ok, err)
	}
	var n int
	if err := st.PG.QueryRow(ctx, `SELECT count(*) FROM circles_cache`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("rows = %d err=%v", n, err)
	}
}
