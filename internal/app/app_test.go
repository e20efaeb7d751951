package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/config"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Environment:          "test",
		LogLevel:             "error",
		HTTPPort:             8010,
		StoreBackend:         backend,
		UpdateRetries:        5,
		EventsEnabled:        false,
		SuccessNoticeSeconds: 3,
		CORSAllowedOrigins:   []string{"*"},
		PprofAllowedCIDRs:    []string{"127.0.0.1/32"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func send(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Client-ID", "browser-1")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApp_MemoryBackend(t *testing.T) {
	a := newTestApp(t, testConfig(config.BackendMemory))
	h := a.Handler()

	rec := send(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, h, http.MethodPost, "/api/v1/users", map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = send(t, h, http.MethodPost, "/api/v1/products/1/reviews", map[string]any{"rating": 5, "comment": "great"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = send(t, h, http.MethodGet, "/api/v1/products/1/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "great")
}

func TestNewApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.BackendRedis)
	cfg.RedisAddr = mr.Addr()

	a := newTestApp(t, cfg)
	h := a.Handler()

	rec := send(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")

	rec = send(t, h, http.MethodPost, "/api/v1/users", map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = send(t, h, http.MethodPost, "/api/v1/products/2/reviews", map[string]any{"rating": 4, "comment": "stored in redis"})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.NotEmpty(t, mr.Keys())

	mr.Close()
	rec = send(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(config.BackendRedis)
	cfg.RedisAddr = addr

	_, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewApp_UnknownBackend(t *testing.T) {
	_, err := NewApp(testConfig("cassandra"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestShutdown_Idempotent(t *testing.T) {
	a, err := NewApp(testConfig(config.BackendMemory), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown())
	assert.NoError(t, a.Shutdown())
}
