// Package metrics holds the Prometheus collectors for catalog acquisition.
// The CLI has no scrape endpoint; counters are flushed to a node_exporter
// textfile at exit when configured.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "multiki"

// Catalog result sources
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)

// Metrics records catalog activity. A nil *Metrics is a no-op.
type Metrics struct {
	requests       *prometheus.CounterVec
	fetchFailures  prometheus.Counter
	saveFailures   prometheus.Counter
	strategies     *prometheus.CounterVec
	degraded       prometheus.Counter
	records        prometheus.Gauge
	fetchDuration  prometheus.Histogram
	detailRequests *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog requests by where the records came from",
		}, []string{"source"}), // source=cache|network

		fetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_failures_total",
			Help:      "Listing fetches that failed with the source unreachable",
		}),

		saveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "save_failures_total",
			Help:      "Snapshot writes that failed after a successful fetch",
		}),

		strategies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "strategy_total",
			Help:      "Listing extractions by winning strategy (none when nothing matched)",
		}, []string{"strategy"}),

		degraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decode",
			Name:      "degraded_total",
			Help:      "Listings decoded lossily because no candidate encoding fit",
		}),

		records: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "records",
			Help:      "Records returned by the last catalog request",
		}),

		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Time to download the listing page",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		}),

		detailRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detail",
			Name:      "requests_total",
			Help:      "Detail page lookups by outcome",
		}, []string{"outcome"}), // outcome=found|empty
	}
}

// ObserveRequest counts a catalog request served from source.
func (m *Metrics) ObserveRequest(source string, records int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(source).Inc()
	m.records.Set(float64(records))
}

// ObserveFetch records a listing download.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		m.fetchFailures.Inc()
	}
}

// ObserveExtraction records the winning strategy and decode quality.
func (m *Metrics) ObserveExtraction(strategy string, degraded bool) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.strategies.WithLabelValues(strategy).Inc()
	if degraded {
		m.degraded.Inc()
	}
}

// SaveFailed counts a snapshot write failure.
func (m *Metrics) SaveFailed() {
	if m == nil {
		return
	}
	m.saveFailures.Inc()
}

// ObserveDetail counts a detail lookup.
func (m *Metrics) ObserveDetail(found bool) {
	if m == nil {
		return
	}
	outcome := "empty"
	if found {
		outcome = "found"
	}
	m.detailRequests.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, atomically.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}
