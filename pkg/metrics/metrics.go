// Package metrics defines the Prometheus metric collectors used by the
// indexing service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	IndexTxTotal      *prometheus.CounterVec
	IndexTxDuration   prometheus.Histogram
	TermsPerPage      prometheus.Histogram
	IngestEventsTotal *prometheus.CounterVec
	IngestLagSeconds  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		IndexTxTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_transactions_total",
				Help: "Total index transactions by status (ok, error).",
			},
			[]string{"status"},
		),
		IndexTxDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_transaction_duration_seconds",
				Help:    "Latency of one document's index transaction.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		TermsPerPage: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_terms_per_page",
				Help:    "Distinct terms per indexed page.",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000},
			},
		),
		IngestEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_events_total",
				Help: "Total ingest events by outcome (indexed, failed, malformed).",
			},
			[]string{"outcome"},
		),
		IngestLagSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_handle_duration_seconds",
				Help:    "Time spent handling one ingest event, retries included.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
			},
		),
	}

	prometheus.MustRegister(
		m.IndexTxTotal,
		m.IndexTxDuration,
		m.TermsPerPage,
		m.IngestEventsTotal,
		m.IngestLagSeconds,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
