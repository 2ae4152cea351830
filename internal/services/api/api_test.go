package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"circlesync/internal/modkit"
	"circlesync/internal/platform/config"
	phttp "circlesync/internal/platform/net/http"
	"circlesync/internal/platform/testkit"
	tcmod "circlesync/internal/services/trustcache/module"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMount(t *testing.T) {
	reg := prometheus.NewRegistry()
	deps := modkit.Deps{Cfg: config.New(), Metrics: reg}
	tc, err := tcmod.New(context.Background(), deps, tcmod.Options{Store: tcmod.StoreMemory})
	if err != nil {
		t.Fatalf("trustcache: %v", err)
	}

	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, Options{Service: "circlesync-api", Deps: deps}, tc)

	for _, path := range []string{"/meta/health", "/circles/stats", "/circles/status/0xabc"} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != 200 {
			t.Fatalf("GET %s = %d (%s)", path, rec.Code, rec.Body.String())
		}
		testkit.MustContain(t, rec.Body.String(), `"status_code":200`)
	}

	n, err := testutil.GatherAndCount(reg, "circlesync_http_request_duration_seconds")
	if err != nil || n == 0 {
		t.Fatalf("request histogram series = %d err=%v", n, err)
	}
}
