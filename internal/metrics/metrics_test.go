package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	m := NewProvider(false, prometheus.NewRegistry())
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/api/schedule", 200)
	m.ObserveRequestDuration("/api/schedule", time.Millisecond)
	m.ObserveSyncRun("completed", time.Second)
	m.SetSyncChanges("inserted", 3)
	m.IncSkippedRecords("unparseable_date")
	m.IncTimeZoneCache(true)
}

func TestPrometheusProvider_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, ok := NewProvider(true, reg).(*PrometheusProvider)
	require.True(t, ok)

	m.IncRequestsTotal("/api/schedule", 200)
	m.IncRequestsTotal("/api/schedule", 204)
	m.IncRequestsTotal("/api/schedule", 409)
	m.ObserveSyncRun("failed", 2*time.Second)
	m.SetSyncChanges("updated", 7)
	m.IncSkippedRecords("unknown_status")
	m.IncTimeZoneCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/schedule", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/schedule", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncRuns.WithLabelValues("failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.syncChanges.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedRecords.WithLabelValues("unknown_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tzCache.WithLabelValues("miss")))
}

func TestPrometheusProvider_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProvider(true, reg).(*PrometheusProvider)
	m.SetSyncChanges("inserted", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `animeschedule_catalog_sync_changes{kind="inserted"} 1`)
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(101))
	assert.Equal(t, "3xx", httpStatusBucket(304))
	assert.Equal(t, "5xx", httpStatusBucket(503))
}
