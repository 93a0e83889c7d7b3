package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics holds the Prometheus collectors for a metered store.
type storeMetrics struct {
	getCount     *prometheus.CounterVec
	setCount     prometheus.Counter
	entries      prometheus.Gauge
	currentBytes prometheus.Gauge
}

func newStoreMetrics(namespace string, reg prometheus.Registerer) *storeMetrics {
	factory := promauto.With(reg)
	return &storeMetrics{
		getCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_gets_total",
			Help:      "Total cache reads by result",
		}, []string{"result"}),
		setCount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_sets_total",
			Help:      "Total cache writes",
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current number of live cache entries",
		}),
		currentBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_bytes",
			Help:      "Accounted size of all live cache entries in bytes",
		}),
	}
}

// sized is implemented by stores that can report their occupancy.
type sized interface {
	Len() int
	CurrentBytes() int64
}

// MeteredStore wraps a Store with Prometheus metrics. Cache semantics
// are pure delegation; only observability is added.
type MeteredStore struct {
	inner   Store
	metrics *storeMetrics
}

// NewMeteredStore creates a metered wrapper around inner, registering
// its collectors with reg.
func NewMeteredStore(namespace string, reg prometheus.Registerer, inner Store) *MeteredStore {
	return &MeteredStore{
		inner:   inner,
		metrics: newStoreMetrics(namespace, reg),
	}
}

// Get delegates to the inner store and records hit/miss counts.
func (m *MeteredStore) Get(key string) (any, bool) {
	value, ok := m.inner.Get(key)
	if ok {
		m.metrics.getCount.WithLabelValues("hit").Inc()
	} else {
		m.metrics.getCount.WithLabelValues("miss").Inc()
	}
	m.updateGauges()
	return value, ok
}

// Set delegates to the inner store and records the write.
func (m *MeteredStore) Set(key string, value any) bool {
	ok := m.inner.Set(key, value)
	m.metrics.setCount.Inc()
	m.updateGauges()
	return ok
}

func (m *MeteredStore) updateGauges() {
	if s, ok := m.inner.(sized); ok {
		m.metrics.entries.Set(float64(s.Len()))
		m.metrics.currentBytes.Set(float64(s.CurrentBytes()))
	}
}

// Ensure MeteredStore implements Store
var _ Store = (*MeteredStore)(nil)
