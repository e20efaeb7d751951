package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 5, cfg.UpdateRetries)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsActive())
	assert.Equal(t, 3*time.Second, cfg.SuccessNoticeTTL())
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "9000")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "reviews")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SUCCESS_NOTICE_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.SuccessNoticeTTL())

	pc := cfg.PostgresConfig()
	assert.Equal(t, "postgres://somstore:somstore_secret@db:5432/reviews?sslmode=disable", pc.DSN())
}

func TestLoad_EventsDisabled(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.EventsActive())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"port":        {"REVIEW_HTTP_PORT": "70000"},
		"backend":     {"STORE_BACKEND": "mongo"},
		"redis addr":  {"REDIS_ADDR": "no-port"},
		"retries":     {"UPDATE_RETRIES": "0"},
		"notice":      {"SUCCESS_NOTICE_SECONDS": "0"},
		"sample rate": {"OTEL_SAMPLE_RATE": "1.5"},
		"rate limit":  {"RATE_LIMIT_RPS": "-1"},
		"burst":       {"RATE_LIMIT_BURST": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	cfg, err := Load()
	require.NoError(t, err)

	rc, err := cfg.RedisConfig()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", rc.Addr())
	assert.Equal(t, 2, rc.DB)
}
