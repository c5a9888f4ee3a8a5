package aggregation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("vitals.aggregation")

var (
	aggregateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_aggregate_requests_total",
			Help: "Aggregate data requests by outcome.",
		},
		[]string{"status"},
	)

	aggregateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitals_aggregate_duration_seconds",
			Help:    "Latency of aggregate data requests.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"status"},
	)

	aggregateMetricsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_aggregate_metrics_computed_total",
			Help: "Aggregation metrics computed, by aggregation name.",
		},
		[]string{"aggregation"},
	)
)
