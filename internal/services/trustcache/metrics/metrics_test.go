package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun("full", true, 2*time.Second)
	m.ObserveRun("full", false, time.Second)
	m.IncPages()
	m.IncPages()
	m.AddRecords(3, 1)
	m.ObserveQuery("Avatars", "ok", 10*time.Millisecond)
	m.SetCached(5, 7)

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("full", "success")); got != 1 {
		t.Fatalf("runs success = %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("full", "failure")); got != 1 {
		t.Fatalf("runs failure = %v", got)
	}
	if got := testutil.ToFloat64(m.Pages); got != 2 {
		t.Fatalf("pages = %v", got)
	}
	if got := testutil.ToFloat64(m.Records.WithLabelValues("new")); got != 3 {
		t.Fatalf("new = %v", got)
	}
	if got := testutil.ToFloat64(m.CachedUsers.WithLabelValues("registered")); got != 7 {
		t.Fatalf("registered gauge = %v", got)
	}
	if n := testutil.CollectAndCount(m.QueryDuration); n != 1 {
		t.Fatalf("query series = %d", n)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRun("auto", true, 0)
	m.IncPages()
	m.AddRecords(1, 1)
	m.ObserveQuery("x", "ok", 0)
	m.SetCached(0, 0)
}

func TestNew_SeparateRegistries(t *testing.T) {
	_ = New(prometheus.NewRegistry())
	_ = New(prometheus.NewRegistry())
}
