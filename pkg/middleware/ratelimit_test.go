package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(0.001, 2, discardLogger())(okHandler())

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/reviews/r1/report", nil)
		req = req.WithContext(logger.WithClientID(req.Context(), client))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("c1"))
	assert.Equal(t, http.StatusOK, send("c1"))
	assert.Equal(t, http.StatusTooManyRequests, send("c1"))

	// Buckets are per client.
	assert.Equal(t, http.StatusOK, send("c2"))
}

func TestRateLimit_ResponseAndReadsUnlimited(t *testing.T) {
	h := RateLimit(0.001, 1, discardLogger())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/edit", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/edit", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeErrorCode(t, rec.Body.Bytes()))

	for i := 0; i < 5; i++ {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestVisitorStore_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	s := newVisitorStore(1, 1, time.Minute)
	s.nowFunc = func() time.Time { return now }

	s.getVisitor("c1")
	s.getVisitor("c2")
	assert.Equal(t, 2, s.len())

	now = now.Add(2 * time.Minute)
	s.getVisitor("c3")
	assert.Equal(t, 1, s.len())
}
