package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/event"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/memory"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/health"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithConfig(t, DefaultRouterConfig())
}

func newTestRouterWithConfig(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	return newTestRouterOn(t, memory.NewKV(), cfg)
}

func newTestRouterOn(t *testing.T, kv repository.KV, cfg RouterConfig) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reviews := repository.NewReviewStore(kv, logger)
	users := repository.NewUserStore(kv, logger)
	sessions := repository.NewSessionStore(kv)
	events := event.NoopPublisher{}

	svcs := Services{
		Reviews:  service.NewReviewService(reviews, users, sessions, events, time.Minute, logger),
		Sessions: service.NewSessionService(reviews, users, sessions, events, logger),
		Users:    service.NewUserService(users, logger),
		Catalog:  service.NewCatalogService(),
	}
	return NewRouter(svcs, health.NewHandler(), cfg, logger)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, clientID string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// =============================================================================
// Rate limiting
// =============================================================================

func TestRateLimit_ClientWrites(t *testing.T) {
	cfg := DefaultRouterConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 3
	h := newTestRouterWithConfig(t, cfg)

	do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "Ana"})
	rec, env := do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c1", map[string]any{"rating": 4, "comment": "bom"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rv := decode[service.ReviewView](t, env)

	report := "/api/v1/products/1/reviews/" + rv.ID + "/report"
	rec, _ = do(t, h, http.MethodPost, report, "c1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodPost, report, "c1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	rec, _ = do(t, h, http.MethodPost, report, "c2", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "other clients keep their own budget")

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/1/reviews", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
	assert.Equal(t, 2, decode[service.ReviewPage](t, env).Reviews[0].Reports)
}

func TestReviews_NewerSchemaIsConflict(t *testing.T) {
	kv := memory.NewKV()
	require.NoError(t, kv.Set(context.Background(), repository.ReviewsKey("1"), []byte(`{"schema_version":99,"reviews":[]}`)))
	h := newTestRouterOn(t, kv, DefaultRouterConfig())

	rec, env := do(t, h, http.MethodGet, "/api/v1/products/1/reviews", "c1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Contains(t, env.Error.Message, "newer version")

	do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "Ana"})
	rec, _ = do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c1", map[string]any{"rating": 5, "comment": "ok"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// Catalog
// =============================================================================

func TestCatalog(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	products := decode[[]ProductResponse](t, env)
	require.Len(t, products, 6)
	assert.Equal(t, "R$ 1069,00", products[0].PriceLabel)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/6", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6", decode[ProductResponse](t, env).ID)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

// =============================================================================
// Client identity
// =============================================================================

func TestClientIDRequired(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products/1/reviews", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/products/1/reviews", "bad id!", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/products/1/reviews", "browser-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

// =============================================================================
// Users
// =============================================================================

func TestUsers(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/users/me", "c1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "must not be blank", env.Error.Fields["name"])

	rec, env = do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": " Ana "})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]string](t, env)
	assert.Equal(t, "Ana", created["name"])

	rec, env = do(t, h, http.MethodGet, "/api/v1/users/me", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created["id"], decode[map[string]string](t, env)["id"])

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/users/me", "c1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/users/me", "c1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// Reviews
// =============================================================================

func TestReviewLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c1", map[string]any{"rating": 5, "comment": "ok"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "adding needs an active user")

	do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "Ana"})
	do(t, h, http.MethodPost, "/api/v1/users", "c2", map[string]string{"name": "Bia"})

	rec, env := do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c1", map[string]any{"rating": 0, "comment": "ok"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "please select a rating and write a comment", env.Error.Message)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c1", map[string]any{"rating": 5, "comment": "Excelente"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[service.ReviewView](t, env)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/1/reviews", "c2", map[string]any{"rating": 1, "comment": "Ruim"})
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[service.ReviewView](t, env)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/1/session", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review submitted successfully", decode[service.SessionView](t, env).Notice)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/1/reviews/"+first.ID+"/like", "c2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	liked := decode[service.ReviewView](t, env)
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, "liked", liked.ViewerReaction)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/products/1/reviews/"+second.ID+"/report", "anon", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reporting needs no active user")

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/1/reviews?order=best", "c2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.ReviewPage](t, env)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, first.ID, page.Reviews[0].ID)
	assert.Equal(t, "liked", page.Reviews[0].ViewerReaction)
	assert.True(t, page.Reviews[1].IsAuthor)
	assert.Equal(t, 1, page.Reviews[1].Reports)
	assert.Equal(t, "3.0", page.Summary.AverageLabel)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/1/reviews?stars=1", "c2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[service.ReviewPage](t, env)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, second.ID, page.Reviews[0].ID)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/1/reviews/summary", "c2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[service.SummaryView](t, env)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, "50%", sum.Histogram[0].PercentLabel)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/products/1/reviews/missing/like", "c2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReviews_BadQuery(t *testing.T) {
	h := newTestRouter(t)

	for _, q := range []string{"?stars=7", "?stars=abc", "?order=random"} {
		rec, env := do(t, h, http.MethodGet, "/api/v1/products/1/reviews"+q, "c1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code, q)
	}
}

func TestAddReview_RejectsNonJSON(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/reviews", bytes.NewBufferString("rating=5"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Client-ID", "c1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// =============================================================================
// Delete and edit flows
// =============================================================================

func TestDeleteFlow(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "Ana"})
	do(t, h, http.MethodPost, "/api/v1/users", "c2", map[string]string{"name": "Bia"})
	_, env := do(t, h, http.MethodPost, "/api/v1/products/3/reviews", "c1", map[string]any{"rating": 4, "comment": "Boa"})
	rv := decode[service.ReviewView](t, env)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/products/3/reviews/"+rv.ID+"/delete-request", "c2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/3/reviews/"+rv.ID+"/delete-request", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rv.ID, decode[service.SessionView](t, env).PendingDeleteID)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/3/delete/cancel", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.SessionView](t, env).PendingDeleteID)

	do(t, h, http.MethodPost, "/api/v1/products/3/reviews/"+rv.ID+"/delete-request", "c1", nil)
	rec, env = do(t, h, http.MethodPost, "/api/v1/products/3/delete/confirm", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[service.DeleteResult](t, env)
	assert.True(t, res.Deleted)

	_, env = do(t, h, http.MethodGet, "/api/v1/products/3/reviews", "c1", nil)
	assert.Empty(t, decode[service.ReviewPage](t, env).Reviews)
}

func TestEditFlow(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/v1/users", "c1", map[string]string{"name": "Ana"})
	_, env := do(t, h, http.MethodPost, "/api/v1/products/2/reviews", "c1", map[string]any{"rating": 3, "comment": "antes"})
	rv := decode[service.ReviewView](t, env)

	rec, _ := do(t, h, http.MethodPut, "/api/v1/products/2/edit", "c1", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/2/reviews/"+rv.ID+"/edit", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "antes", decode[service.SessionView](t, env).Draft)

	do(t, h, http.MethodPut, "/api/v1/products/2/edit", "c1", map[string]string{"text": " "})
	rec, env = do(t, h, http.MethodPost, "/api/v1/products/2/edit/save", "c1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "comment must not be empty", env.Error.Message)

	do(t, h, http.MethodPut, "/api/v1/products/2/edit", "c1", map[string]string{"text": "depois"})
	rec, env = do(t, h, http.MethodPost, "/api/v1/products/2/edit/save", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "depois", decode[service.ReviewView](t, env).Comment)

	rec, env = do(t, h, http.MethodPost, "/api/v1/products/2/edit/cancel", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.SessionView](t, env).EditingReviewID)
}

// =============================================================================
// Health and metrics
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
