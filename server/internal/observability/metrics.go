package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the gateway surface.
type Metrics struct {
	ToolInvocations *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	ResourceReads   *prometheus.CounterVec
}

// NewMetrics creates gateway metrics registered with reg under the
// given namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ToolInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations by tool and status",
		}, []string{"tool", "status"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation duration by tool",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
		ResourceReads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_reads_total",
			Help:      "Total resource reads by status",
		}, []string{"status"}),
	}
}

// RecordTool records a tool invocation outcome.
func (m *Metrics) RecordTool(tool string, success bool, duration time.Duration) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.ToolInvocations.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordResource records a resource read outcome.
func (m *Metrics) RecordResource(success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.ResourceReads.WithLabelValues(status).Inc()
}
