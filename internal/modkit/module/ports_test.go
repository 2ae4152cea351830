package module

import (
	"context"
	"testing"

	phttp "circlesync/internal/platform/net/http"
	"circlesync/internal/platform/testkit"
)

type refresher interface{ Refresh(context.Context) error }
type reader interface{ Read() string }

type fakeRefresher struct{}

func (fakeRefresher) Refresh(context.Context) error { return nil }

type bundle struct {
	Refresher refresher
	hidden    reader
}

type stubModule struct{ ports any }

func (s stubModule) MountRoutes(phttp.Router) {}
func (s stubModule) Ports() any               { return s.ports }
func (s stubModule) Name() string             { return "stub" }

func TestPortsOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		ports any
		ok    bool
	}{
		{"nil ports", nil, false},
		{"direct implement", fakeRefresher{}, true},
		{"struct field", bundle{Refresher: fakeRefresher{}}, true},
		{"pointer to struct", &bundle{Refresher: fakeRefresher{}}, true},
		{"unrelated primitive", 42, false},
		{"nil field", bundle{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := PortsOf[refresher](stubModule{ports: c.ports})
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
		})
	}
}

func TestPortsOf_SkipsUnexported(t *testing.T) {
	t.Parallel()

	if _, ok := PortsOf[reader](stubModule{ports: bundle{}}); ok {
		t.Fatalf("unexported field must not be returned")
	}
}

func TestMustPortsOf(t *testing.T) {
	t.Parallel()

	m := stubModule{ports: bundle{Refresher: fakeRefresher{}}}
	if MustPortsOf[refresher](m) == nil {
		t.Fatalf("expected refresher")
	}
	testkit.MustPanic(t, func() { _ = MustPortsOf[reader](m) })
}
