// Package metrics holds the Prometheus collectors shared by the server and the
// ingestion scripts. Collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	FetchOK        = "ok"
	FetchBadStatus = "bad_status"
	FetchTransport = "transport_error"
)

// Seed record results.
const (
	SeedLoaded    = "loaded"
	SeedDuplicate = "duplicate"
	SeedMalformed = "malformed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divelog_fetch_requests_total",
			Help: "Requests sent to the dive site API, by outcome.",
		},
		[]string{"outcome"}, // ok, bad_status, transport_error
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "divelog_fetch_duration_seconds",
			Help:    "Duration of dive site API requests.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	SeedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divelog_seed_records_total",
			Help: "Raw dive site records seen by the seeder, by result.",
		},
		[]string{"result"}, // loaded, duplicate, malformed
	)

	DiveSitesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "divesites_loaded",
			Help: "Number of dive sites written by the last seed pass.",
		},
	)
)

// ObserveFetch records one dive site API call.
func ObserveFetch(outcome string, seconds float64) {
	FetchRequestsTotal.WithLabelValues(outcome).Inc()
	FetchDuration.Observe(seconds)
}

// AddSeedRecords adds n records with the given result.
func AddSeedRecords(result string, n int) {
	if n <= 0 {
		return
	}
	SeedRecordsTotal.WithLabelValues(result).Add(float64(n))
}
