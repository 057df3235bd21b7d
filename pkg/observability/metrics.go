package observability

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds every Prometheus collector the core registers on a
// process-local registry. There is no HTTP /metrics endpoint — this is a
// single-shot CLI tool, not a server — so Dump is the only consumer,
// invoked by the `doctor` subcommand.
type Metrics struct {
	TransactionsTotal  *prometheus.CounterVec
	BuildsTotal        *prometheus.CounterVec
	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec
	FetchTotal         *prometheus.CounterVec
	ResolverDuration   prometheus.Histogram
	BuildDuration      *prometheus.HistogramVec
	GenerationsTotal   prometheus.Counter
}

// NewMetrics creates and registers every collector on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pygr_transactions_total",
				Help: "Total number of install/uninstall/upgrade/apply transactions",
			},
			[]string{"kind", "status"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pygr_builds_total",
				Help: "Total number of recipe builds run",
			},
			[]string{"status"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pygr_cache_hits_total",
				Help: "Total number of binary-cache and build-cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pygr_cache_misses_total",
				Help: "Total number of binary-cache and build-cache misses",
			},
			[]string{"cache"},
		),
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pygr_fetch_total",
				Help: "Total number of source fetches",
			},
			[]string{"status"},
		),
		ResolverDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pygr_resolver_duration_seconds",
				Help:    "Time spent resolving a package graph",
				Buckets: prometheus.DefBuckets,
			},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pygr_build_duration_seconds",
				Help:    "Time spent building a single recipe",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"recipe"},
		),
		GenerationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pygr_profile_generations_total",
				Help: "Total number of profile generations committed",
			},
		),
	}

	registry.MustRegister(
		m.TransactionsTotal,
		m.BuildsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.FetchTotal,
		m.ResolverDuration,
		m.BuildDuration,
		m.GenerationsTotal,
	)

	return m
}

// Dump writes every registered metric in Prometheus text exposition
// format to w. No server is ever started to serve this; `pygr doctor`
// calls Dump directly against stdout.
func Dump(registry *prometheus.Registry, w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
