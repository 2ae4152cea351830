package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "circlesync/internal/platform/errors"
	phttp "circlesync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type refreshIn struct {
	Mode string `json:"mode" validate:"omitempty,oneof=full incremental auto"`
}

func TestSugar_PostGetDelete(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())

	phttp.PostJSON(r, "/refresh", func(_ *http.Request, in refreshIn) (any, error) {
		return map[string]string{"mode": in.Mode}, nil
	})
	phttp.GetJSON(r, "/stats", func(*http.Request) (any, error) { return 3, nil })
	phttp.DeleteJSON(r, "/cursor", func(*http.Request) (any, error) {
		return nil, perr.NotFoundf("no cursor")
	})
	phttp.GetJSON(r, "/queued", func(*http.Request) (any, error) { return phttp.Accepted("queued"), nil })
	phttp.GetJSON(r, "/boom", func(*http.Request) (any, error) { return nil, errors.New("x") })

	cases := []struct {
		method, path, body string
		code               int
		contains           string
	}{
		{"POST", "/refresh", `{"mode":"full"}`, 200, `"mode":"full"`},
		{"POST", "/refresh", ``, 200, `"status_code":200`},
		{"POST", "/refresh", `{"mode":"weekly"}`, 400, `"field":"mode"`},
		{"POST", "/refresh", `{"mode":"full","x":1}`, 400, "unknown field"},
		{"POST", "/refresh", `{"mode":`, 400, "invalid JSON"},
		{"POST", "/refresh", `{} {}`, 400, "trailing"},
		{"GET", "/stats", ``, 200, `"data":3`},
		{"GET", "/queued", ``, 202, `"data":"queued"`},
		{"DELETE", "/cursor", ``, 404, "no cursor"},
		{"GET", "/boom", ``, 500, `"error":"x"`},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		r.Mux().ServeHTTP(rec, req)
		if rec.Code != c.code {
			t.Fatalf("%s %s %q: code = %d, want %d (%s)", c.method, c.path, c.body, rec.Code, c.code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), c.contains) {
			t.Fatalf("%s %s %q: body %s missing %q", c.method, c.path, c.body, rec.Body.String(), c.contains)
		}
	}
}
