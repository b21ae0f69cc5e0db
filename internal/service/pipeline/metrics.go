package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the dump pipeline.
//
// Metrics:
//   - mindump_pipeline_dumps_total{outcome} - dumps processed by outcome
//   - mindump_pipeline_dump_duration_seconds - end-to-end processing time
//   - mindump_pipeline_step_failures_total{step} - degraded steps
//   - mindump_pipeline_calendar_unsynced_total - commits without an external event
//   - mindump_pipeline_queue_depth - jobs waiting for a worker
//   - mindump_pipeline_queue_rejected_total - submissions refused because the queue was full
type Metrics struct {
	Processed        *prometheus.CounterVec
	Duration         prometheus.Histogram
	StepFailures     *prometheus.CounterVec
	CalendarUnsynced prometheus.Counter
	QueueDepth       prometheus.Gauge
	QueueRejected    prometheus.Counter
}

// NewMetrics returns the process-wide pipeline metrics.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			Processed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mindump_pipeline_dumps_total",
					Help: "Dumps processed, by outcome",
				},
				[]string{"outcome"},
			),
			Duration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "mindump_pipeline_dump_duration_seconds",
				Help:    "Time to process one dump",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
			}),
			StepFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mindump_pipeline_step_failures_total",
					Help: "Pipeline steps that failed and were degraded",
				},
				[]string{"step"},
			),
			CalendarUnsynced: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindump_pipeline_calendar_unsynced_total",
				Help: "Committed events without an external calendar entry",
			}),
			QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "mindump_pipeline_queue_depth",
				Help: "Dumps waiting for a worker",
			}),
			QueueRejected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindump_pipeline_queue_rejected_total",
				Help: "Dump submissions rejected because the queue was full or closed",
			}),
		}
	})
	return globalMetrics
}
