package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, hf http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	hf(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLiveness_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return errors.New("down") })

	rec, resp := serve(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return nil })
	h.RegisterOptional("kafka", func(context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadiness_RequiredDown(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return errors.New("connection refused") })

	rec, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["store"].Error)
}

func TestReadiness_OptionalDownIsDegraded(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return nil })
	h.RegisterOptional("kafka", func(context.Context) error { return errors.New("no brokers") })

	rec, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.True(t, resp.Checks["kafka"].Optional)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
}

func TestCheck_RequiredWinsOverOptional(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return errors.New("x") })
	h.RegisterOptional("kafka", func(context.Context) error { return errors.New("y") })

	assert.Equal(t, StatusDown, h.Check(context.Background()).Status)
}
