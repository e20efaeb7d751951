package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric extracts the label-matched metric from a collector.
func collectMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	if t != nil {
		t.Helper()
	}
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		if hasLabels(d, labels) {
			return d
		}
	}
	return nil
}

func hasLabels(d *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lp := range d.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("count-svc"))
	r.Get("/products/{productId}/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+id+"/reviews", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	labels := map[string]string{"service": "count-svc", "method": "GET", "path": "/products/{productId}/reviews", "status": "200"}
	m := collectMetric(t, httpRequestsTotal, labels)
	require.NotNil(t, m, "product ids collapse into the route pattern")
	assert.Equal(t, float64(3), m.GetCounter().GetValue())

	assert.Nil(t, collectMetric(t, httpRequestsTotal, map[string]string{"service": "count-svc", "path": "/products/1/reviews"}))
}

func TestPrometheusMetrics_DurationHistogram(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("hist-svc"))
	r.Post("/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	m := collectMetric(t, httpRequestDuration, map[string]string{"service": "hist-svc", "status": "201"})
	require.NotNil(t, m)
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	seen := float64(-1)
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("inflight-svc"))
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		if m := collectMetric(nil, httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, float64(1), seen)

	m := collectMetric(t, httpRequestsInFlight, map[string]string{"service": "inflight-svc"})
	require.NotNil(t, m)
	assert.Equal(t, float64(0), m.GetGauge().GetValue())
}
