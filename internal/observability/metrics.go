package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	auditDropped         prometheus.Counter
	avatarUploadLatency  prometheus.Histogram
	avatarUploadRejected *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teachme_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teachme_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teachme_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teachme_audit_dropped_total",
			Help: "Audit records that failed to persist and were dropped.",
		})

		avatarUploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teachme_avatar_upload_seconds",
			Help:    "Latency distribution for avatar uploads.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		avatarUploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teachme_avatar_upload_rejected_total",
			Help: "Avatar uploads rejected before storage.",
		}, []string{"reason"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			auditDropped,
			avatarUploadLatency,
			avatarUploadRejected,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AuditDropped exposes the counter for dropped audit records.
func AuditDropped() prometheus.Counter {
	RegisterMetrics()
	return auditDropped
}

// AvatarUploadLatency exposes the avatar upload histogram.
func AvatarUploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return avatarUploadLatency
}

// AvatarUploadRejected exposes the counter for rejected avatar uploads.
func AvatarUploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return avatarUploadRejected
}
