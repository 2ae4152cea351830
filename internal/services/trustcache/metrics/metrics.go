// Package metrics provides observability for the trust cache module
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ingestion runs, remote query latency and cache size
type Metrics struct {
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	Pages         prometheus.Counter
	Records       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	CachedUsers   *prometheus.GaugeVec
}

// New registers every trust cache metric on reg
// a nil reg uses the process default registerer
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "circlesync_ingest_runs_total",
			Help: "Ingestion runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "circlesync_ingest_run_duration_seconds",
			Help:    "Duration of ingestion runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		Pages: f.NewCounter(prometheus.CounterOpts{
			Name: "circlesync_ingest_pages_total",
			Help: "Registration pages fetched",
		}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "circlesync_ingest_records_total",
			Help: "Participants merged by kind (new, updated)",
		}, []string{"kind"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "circlesync_remote_query_duration_seconds",
			Help:    "circles_query latency by table and outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"table", "outcome"}),
		CachedUsers: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circlesync_cached_users",
			Help: "Participants in the last written snapshot by status",
		}, []string{"status"}),
	}
}

// ObserveRun records one finished run
func (m *Metrics) ObserveRun(mode string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.Runs.WithLabelValues(mode, outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// IncPages counts one fetched page
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.Pages.Inc()
}

// AddRecords records merged participants
func (m *Metrics) AddRecords(newCount, updatedCount int) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues("new").Add(float64(newCount))
	m.Records.WithLabelValues("updated").Add(float64(updatedCount))
}

// ObserveQuery matches the circles client Observe hook
func (m *Metrics) ObserveQuery(table, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(table, outcome).Observe(d.Seconds())
}

// SetCached publishes the snapshot composition
func (m *Metrics) SetCached(verified, registered int) {
	if m == nil {
		return
	}
	m.CachedUsers.WithLabelValues("verified").Set(float64(verified))
	m.CachedUsers.WithLabelValues("registered").Set(float64(registered))
}
