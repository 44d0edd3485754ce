package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "grc"

var (
	RecomputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recomputations_total",
		Help:      "Count of derived-field recomputations.",
	}, []string{"kind"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Rows processed by bulk imports.",
	}, []string{"source", "result"})

	IntegrationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "integration_requests_total",
		Help:      "Calls made to external integrations.",
	}, []string{"service", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)
