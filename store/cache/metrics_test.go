package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeteredStore_Delegation(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := newTestCache(1000, time.Minute)
	store := NewMeteredStore("stemformatics", reg, inner)

	ok := store.Set("key", sizedValue{"v", 100})
	require.True(t, ok)

	val, found := store.Get("key")
	assert.True(t, found)
	assert.Equal(t, sizedValue{"v", 100}, val)

	_, found = store.Get("missing")
	assert.False(t, found)
}

func TestMeteredStore_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := newTestCache(1000, time.Minute)
	store := NewMeteredStore("stemformatics", reg, inner)

	store.Set("key", sizedValue{"v", 100})
	store.Get("key")
	store.Get("key")
	store.Get("missing")

	hits := store.metrics.getCount.WithLabelValues("hit")
	misses := store.metrics.getCount.WithLabelValues("miss")

	assert.Equal(t, float64(2), testutil.ToFloat64(hits))
	assert.Equal(t, float64(1), testutil.ToFloat64(misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(store.metrics.setCount))
	assert.Equal(t, float64(1), testutil.ToFloat64(store.metrics.entries))
	assert.Equal(t, float64(100), testutil.ToFloat64(store.metrics.currentBytes))
}

func TestMeteredStore_NopInner(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewMeteredStore("stemformatics", reg, NopStore{})

	// NopStore has no occupancy to report; gauges just stay at zero.
	store.Set("key", "value")
	_, found := store.Get("key")
	assert.False(t, found)

	assert.Equal(t, float64(0), testutil.ToFloat64(store.metrics.entries))
}
