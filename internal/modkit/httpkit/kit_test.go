package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "circlesync/internal/platform/errors"
	phttp "circlesync/internal/platform/net/http"
	"circlesync/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type body struct {
	Name string `json:"name" validate:"required"`
}

func TestMountUnder_SugarAndStack(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := middleware.NewRequestHistogram(reg)

	r := phttp.AdaptChi(chi.NewRouter())
	MountUnder(r, "/m", CommonStack(StackOptions{Requests: hist}), func(sub Router) {
		Get(sub, "/item/{id}", func(req *http.Request) (any, error) { return URLParam(req, "id"), nil })
		Delete(sub, "/item/{id}", func(*http.Request) (any, error) { return NoContent(), nil })
		PostJSON(sub, "/item", func(_ *http.Request, in body) (any, error) {
			if in.Name == "dup" {
				return nil, perr.Conflictf("exists")
			}
			return Accepted(in.Name), nil
		})
		sub.Get("/raw", Handle(func(*http.Request) Response { return Error(errors.New("raw")) }))
	})

	cases := []struct {
		method, path, body string
		code               int
		contains           string
	}{
		{"GET", "/m/item/7", "", 200, `"data":"7"`},
		{"DELETE", "/m/item/7", "", 204, ""},
		{"POST", "/m/item", `{"name":"a"}`, 202, `"data":"a"`},
		{"POST", "/m/item", `{"name":"dup"}`, 409, "exists"},
		{"POST", "/m/item", `{}`, 400, `"field":"name"`},
		{"GET", "/m/raw", "", 500, "raw"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(c.method, c.path, strings.NewReader(c.body)))
		if rec.Code != c.code {
			t.Fatalf("%s %s = %d, want %d (%s)", c.method, c.path, rec.Code, c.code, rec.Body.String())
		}
		if c.contains != "" && !strings.Contains(rec.Body.String(), c.contains) {
			t.Fatalf("%s %s body = %s, missing %q", c.method, c.path, rec.Body.String(), c.contains)
		}
	}

	if n := testutil.CollectAndCount(hist); n == 0 {
		t.Fatalf("expected access log observations")
	}
}

func TestMountUnder_RootGroup(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Tag", "on")
			next.ServeHTTP(w, req)
		})
	}
	MountUnder(r, "", []func(http.Handler) http.Handler{tag}, func(sub Router) {
		Get(sub, "/ping", func(*http.Request) (any, error) { return "pong", nil })
	})
	r.Get("/bare", Handle(func(*http.Request) Response { return OK("bare") }))

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	if rec.Code != 200 || rec.Header().Get("X-Tag") != "on" {
		t.Fatalf("grouped route = %d tag=%q", rec.Code, rec.Header().Get("X-Tag"))
	}
	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/bare", nil))
	if rec.Header().Get("X-Tag") != "" {
		t.Fatalf("group middleware leaked to sibling route")
	}
}
