package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveCalculation("cost", "ok")
	m.ObserveCalculation("cost", "ok")
	m.ObserveCalculation("cost", "invalid_argument")
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveLead("franchise")
	m.ObserveRPC("/petvend.v1.CalculatorService/CalculateCost", "ok", 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calculations.WithLabelValues("cost", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("cost", "invalid_argument")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leads.WithLabelValues("franchise")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "petvend_calculations_total")
	assert.Contains(t, rec.Body.String(), "petvend_rpc_duration_seconds_bucket")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCalculation("cost", "ok")
		m.ObserveCacheLookup(true)
		m.ObserveLead("contact")
		m.ObserveRPC("p", "ok", 1)
	})
}
