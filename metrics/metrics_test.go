package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSearch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSearch("indexed", "ok", 3, 10*time.Millisecond)
	m.RecordSearch("indexed", "ok", 1, 5*time.Millisecond)
	m.RecordSearch("last_resort", "error", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("indexed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("last_resort", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration.WithLabelValues("indexed").(prometheus.Histogram)))
}

func TestRecordFallbackAndStoreUp(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordFallback("indexed", "fallback")
	m.SetStoreUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("indexed", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreUp))

	m.SetStoreUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StoreUp))
}

func TestRecordHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordHTTP("/search", "200")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/search", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSearch("list", "ok", 0, 0)
		m.RecordFallback("a", "b")
		m.RecordHTTP("/", "200")
		m.SetStoreUp(true)
	})
}
