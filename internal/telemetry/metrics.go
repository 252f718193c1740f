package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted     = prometheus.NewCounter(prometheus.CounterOpts{Name: "validation_jobs_submitted_total", Help: "Validation jobs accepted"})
	JobsRejected      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "validation_jobs_rejected_total", Help: "Validation submissions rejected"}, []string{"reason"})
	JobsCompleted     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "validation_jobs_completed_total", Help: "Validation jobs that reached a terminal state"}, []string{"status"})
	JobsEvicted       = prometheus.NewCounter(prometheus.CounterOpts{Name: "validation_jobs_evicted_total", Help: "Terminal jobs dropped from the registry"})
	QueueDepthGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "validation_queue_depth", Help: "Jobs waiting for a worker"})
	InFlightGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "validation_inflight", Help: "Validator calls in progress"})
	ValidatorDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "validation_upstream_duration_seconds",
		Help:    "Outbound validator call latency",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsRejected,
			JobsCompleted,
			JobsEvicted,
			QueueDepthGauge,
			InFlightGauge,
			ValidatorDuration,
		)
	})
	return promhttp.Handler()
}
