package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sales_feed"

// Metrics holds the Prometheus counters, histograms, and gauges for the feed
// generator and the snapshot reader.
type Metrics struct {
	// Generator metrics.
	RecordsAppended  prometheus.Counter
	AppendErrors     prometheus.Counter
	SinkPublished    *prometheus.CounterVec // labels: sink, outcome={success,error}
	GeneratorRunning prometheus.Gauge

	// Snapshot metrics.
	SnapshotLoads        *prometheus.CounterVec // labels: outcome={success,error}
	SnapshotCache        *prometheus.CounterVec // labels: result={hit,miss}
	SnapshotRecords      prometheus.Gauge
	SnapshotLoadDuration prometheus.Histogram
	TornRowsDiscarded    prometheus.Counter

	// Dashboard metrics.
	MapFallbacks *prometheus.CounterVec // labels: city

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_appended_total",
			Help:      "Total sale records appended to the feed file.",
		}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_errors_total",
			Help:      "Total failed appends to the feed file.",
		}),
		SinkPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_published_total",
			Help:      "Sale records handed to secondary sinks by sink and outcome.",
		}, []string{"sink", "outcome"}),
		GeneratorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generator_running",
			Help:      "1 when the generator loop is active, 0 when stopped.",
		}),
		SnapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Feed file loads by outcome.",
		}, []string{"outcome"}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of records in the most recently loaded snapshot.",
		}),
		SnapshotLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_load_duration_seconds",
			Help:      "Duration of a feed file load.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		TornRowsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "torn_rows_discarded_total",
			Help:      "Incomplete trailing rows skipped while an append was in flight.",
		}),
		MapFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_fallbacks_total",
			Help:      "Cities placed at the default coordinate because no location was known.",
		}, []string{"city"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding of unmapped cities is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsAppended,
		m.AppendErrors,
		m.SinkPublished,
		m.GeneratorRunning,
		m.SnapshotLoads,
		m.SnapshotCache,
		m.SnapshotRecords,
		m.SnapshotLoadDuration,
		m.TornRowsDiscarded,
		m.MapFallbacks,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
	}
}
