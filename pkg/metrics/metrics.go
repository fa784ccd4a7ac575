package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Job metrics
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamflow_jobs_total",
			Help: "Total number of job drivers started, by task",
		},
		[]string{"task"},
	)

	JobsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamflow_jobs_completed_total",
			Help: "Total number of job drivers finished, by task and final status",
		},
		[]string{"task", "status"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamflow_job_duration_seconds",
			Help:    "Job driver wall-clock duration in seconds, by task",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	// Token metrics
	TokensEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamflow_tokens_emitted_total",
			Help: "Total number of tokens put onto a port, by port",
		},
		[]string{"port"},
	)

	// Connector metrics
	CopyBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamflow_copy_bytes_total",
			Help: "Total bytes transferred by Connector.Copy, by direction",
		},
		[]string{"kind"},
	)

	CopyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamflow_copy_duration_seconds",
			Help:    "Connector.Copy duration in seconds, by direction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamflow_run_duration_seconds",
			Help:    "Connector.Run duration in seconds, by location",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"location"},
	)

	DeploymentsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streamflow_deployments_active",
			Help: "Whether a model's DeploymentManager is currently deployed (1) or not (0)",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobsCompletedTotal)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(TokensEmittedTotal)
	prometheus.MustRegister(CopyBytesTotal)
	prometheus.MustRegister(CopyDuration)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(DeploymentsActive)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
