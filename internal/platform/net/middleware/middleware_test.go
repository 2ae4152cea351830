package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "circlesync/internal/platform/errors"
	"circlesync/internal/platform/logger"
	pnet "circlesync/internal/platform/net"
	phttp "circlesync/internal/platform/net/http"
	"circlesync/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDefaults_ChainServes(t *testing.T) {
	m := chi.NewRouter()
	m.Use(middleware.Defaults()...)

	var seenReq, seenLog string
	m.Get("/x", func(w http.ResponseWriter, r *http.Request) {
		seenReq = pnet.RequestID(r.Context())
		seenLog = reqIDFromLogger(r)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("a", 4<<10))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "rid-7")
	req.Header.Set("Accept-Encoding", "gzip")
	m.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if seenReq != "rid-7" || seenLog != "rid-7" {
		t.Fatalf("request id not propagated: ctx=%q log=%q", seenReq, seenLog)
	}
	if rec.Header().Get("Content-Encoding") == "" {
		t.Fatalf("expected compression")
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected no-cache headers")
	}
}

// reqIDFromLogger renders one log line through logger.C and reads request_id back
func reqIDFromLogger(r *http.Request) string {
	var sb strings.Builder
	l := logger.C(r.Context()).Output(&sb)
	l.Info().Msg("ping")
	var line map[string]any
	_ = json.Unmarshal([]byte(sb.String()), &line)
	s, _ := line["request_id"].(string)
	return s
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") }))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "rid-p"))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") != "rid-p" {
		t.Fatalf("request id header missing")
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != perr.ErrorCodePanic || env.RequestID != "rid-p" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestAccessLog_ObservesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := middleware.NewRequestHistogram(reg)

	m := chi.NewRouter()
	m.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: time.Nanosecond, Requests: hist}))
	m.Get("/circles/status/{address}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("x"))
	})

	for _, addr := range []string{"0x1", "0x2"} {
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/circles/status/"+addr, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("code = %d", rec.Code)
		}
	}

	if n := testutil.CollectAndCount(hist); n != 1 {
		t.Fatalf("want one series keyed by pattern, got %d", n)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://app.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/circles/refresh", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Fatalf("allow methods = %q", got)
	}
}

func TestHeartbeat(t *testing.T) {
	h := middleware.Heartbeat("/health")(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("heartbeat code = %d", rec.Code)
	}
}
