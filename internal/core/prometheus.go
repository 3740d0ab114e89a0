package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder fulfills MetricsRecorder against a Prometheus
// registry. Operations become labels on shared counter/histogram families so
// unmatched-group and write-failure rates are scrapeable.
type PrometheusMetricsRecorder struct {
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors on reg. A nil registerer falls back to the default registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platebind",
		Subsystem: "pipeline",
		Name:      "operations_total",
		Help:      "Pipeline stage outcomes by operation and status.",
	}, []string{"operation", "status"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "platebind",
		Subsystem: "pipeline",
		Name:      "operation_duration_seconds",
		Help:      "Pipeline stage durations by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	for _, c := range []prometheus.Collector{results, durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &PrometheusMetricsRecorder{results: results, durations: durations}, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}
