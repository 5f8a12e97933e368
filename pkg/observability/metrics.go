// Package observability provides Prometheus metrics and stage middleware
// for monitoring the response pipeline.
package observability

import "github.com/prometheus/client_golang/prometheus"

// SizeBuckets covers response bodies from 64 bytes to 16 MiB.
var SizeBuckets = prometheus.ExponentialBuckets(64, 4, 10)

// Decision label values for TransformerDecisionsTotal.
const (
	DecisionWorking    = "working"
	DecisionNotWorking = "not_working"
	DecisionSettled    = "settled"
	DecisionSkipped    = "skipped"
)

var (
	// RequestsTotal counts all requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respipe_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respipe_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// InFlightRequests tracks requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "respipe_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// TransformerDecisionsTotal counts the once-per-generation decisions
	// taken by each transformer.
	TransformerDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respipe_transformer_decisions_total",
			Help: "Transformer decisions",
		},
		[]string{"transformer", "decision"},
	)

	// BodyRestartsTotal counts zero-resets of delegating bodies by the
	// transformer that owns them.
	BodyRestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respipe_body_restarts_total",
			Help: "Body restarts",
		},
		[]string{"transformer"},
	)

	// BufferedBytes records the size of fully buffered bodies when they are
	// released downstream.
	BufferedBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "respipe_buffered_bytes",
			Help:    "Buffered body size",
			Buckets: SizeBuckets,
		},
	)

	// ErrorPagesTotal counts error pages by how they were delivered:
	// "replaced" after a restart, or "appended" when restart was not possible.
	ErrorPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respipe_error_pages_total",
			Help: "Error pages",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		TransformerDecisionsTotal,
		BodyRestartsTotal,
		BufferedBytes,
		ErrorPagesTotal,
	)
}
