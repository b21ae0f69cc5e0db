package archive

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics for the archive engine, registered once on the default registry.
type Metrics struct {
	Archived prometheus.Counter
	Failures prometheus.Counter
}

// NewMetrics returns the process-wide archive metrics.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			Archived: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindump_archive_items_archived_total",
				Help: "Actionable items archived as overdue",
			}),
			Failures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindump_archive_failures_total",
				Help: "Archive sweeps that failed",
			}),
		}
	})
	return globalMetrics
}
