package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordValidationFailure("createSubject", "MissingField")
	m.RecordValidationFailure("createSubject", "MissingField")
	m.RecordGuardDecision("admin", "forbidden", time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordJob("success")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.validationFailure.WithLabelValues("createSubject", "MissingField")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.guardDecisions.WithLabelValues("admin", "forbidden")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.cacheHitRatio))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobsProcessed.WithLabelValues("success")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failures_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService

	m.RecordValidationFailure("x", "y")
	m.RecordGuardDecision("g", "authorized", 0)
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, 0)
	m.RecordJob("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
