package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"vendorbook/internal/core/types"
	"vendorbook/internal/domain/settlement"
	"vendorbook/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("vendorbook", []float64{1, 10}, registry)

	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetrics_ReusesRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("vendorbook", nil, registry)
	second := obs.NewHTTPMetrics("vendorbook", nil, registry)
	assert.Same(t, first.ReqTotal, second.ReqTotal)
}

func TestSettlementMetrics(t *testing.T) {
	m := obs.NewSettlementMetrics("vendorbook", prometheus.NewRegistry())

	m.SessionStarted()
	m.SessionStarted()
	m.SessionLocked()

	rec := &settlement.DailySalesRecord{SessionTotals: settlement.ZeroSessionTotals()}
	rec.TotalRevenue = types.MustMoney("35.50")
	m.RecordSubmitted(rec, true)
	m.RecordSubmitted(rec, false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsLocked))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues("replayed")))
	assert.Equal(t, 35.5, testutil.ToFloat64(m.SubmittedRevenue))
}
