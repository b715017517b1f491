// Package metrics provides Prometheus metrics for ultimatethumb.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerateTotal counts thumbnail renders.
	GenerateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultimatethumb",
			Name:      "generate_total",
			Help:      "Total number of thumbnail renders",
		},
		[]string{"factor", "status"},
	)

	// GenerateDuration measures how long a render (including optimization) takes.
	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ultimatethumb",
			Name:      "generate_duration_seconds",
			Help:      "Duration of thumbnail renders in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"factor"},
	)

	// ResolveTotal counts name lookups by outcome.
	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultimatethumb",
			Name:      "resolve_total",
			Help:      "Total number of thumbnail name lookups",
		},
		[]string{"status"},
	)

	// DroppedSizes counts requested sizes removed from a family because an
	// earlier size already reached the source.
	DroppedSizes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ultimatethumb",
			Name:      "dropped_sizes_total",
			Help:      "Total number of requested sizes dropped by oversize clamping",
		},
	)

	// RequestsTotal counts served HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ultimatethumb",
			Name:      "http_requests_total",
			Help:      "Total number of thumbnail HTTP requests",
		},
		[]string{"code"},
	)
)

// RecordGenerate records a finished render.
func RecordGenerate(factor, status string, duration float64) {
	GenerateTotal.WithLabelValues(factor, status).Inc()
	GenerateDuration.WithLabelValues(factor).Observe(duration)
}

// RecordResolve records a name lookup.
func RecordResolve(status string) {
	ResolveTotal.WithLabelValues(status).Inc()
}

// RecordDropped records sizes removed by clamping.
func RecordDropped(n int) {
	if n > 0 {
		DroppedSizes.Add(float64(n))
	}
}

// RecordRequest records a served request.
func RecordRequest(code string) {
	RequestsTotal.WithLabelValues(code).Inc()
}
