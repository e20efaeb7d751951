package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/database"
	pkgconfig "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/config"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/tracing"
)

// Store backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REVIEW_HTTP_PORT" envDefault:"8010"`

	// Store backend: redis, postgres or memory
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"redis"`
	UpdateRetries int    `env:"UPDATE_RETRIES" envDefault:"5"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"somstore"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"somstore_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"somstore_reviews"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"true"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Widget behaviour
	SuccessNoticeSeconds int `env:"SUCCESS_NOTICE_SECONDS" envDefault:"3"`

	// Per-client write rate limit. RATE_LIMIT_RPS=0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StoreBackend {
	case BackendRedis:
		if _, err := c.RedisConfig(); err != nil {
			return err
		}
	case BackendPostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of redis, postgres, memory, got %q", c.StoreBackend)
	}
	if c.UpdateRetries < 1 {
		return fmt.Errorf("UPDATE_RETRIES must be at least 1, got %d", c.UpdateRetries)
	}
	if c.SuccessNoticeSeconds < 1 {
		return fmt.Errorf("SUCCESS_NOTICE_SECONDS must be at least 1, got %d", c.SuccessNoticeSeconds)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// EventsActive reports whether review events should be published.
func (c *Config) EventsActive() bool {
	return c.EventsEnabled && len(c.KafkaBrokers) > 0 && c.KafkaBrokers[0] != ""
}

// SuccessNoticeTTL is the lifetime of the "review submitted" notice.
func (c *Config) SuccessNoticeTTL() time.Duration {
	return time.Duration(c.SuccessNoticeSeconds) * time.Second
}

// RedisConfig converts the Redis settings.
func (c *Config) RedisConfig() (database.RedisConfig, error) {
	host, portStr, err := net.SplitHostPort(c.RedisAddr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("invalid REDIS_ADDR %q: %w", c.RedisAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("invalid REDIS_ADDR port %q", portStr)
	}
	rc := database.DefaultRedisConfig()
	rc.Host = host
	rc.Port = port
	rc.Password = c.RedisPass
	rc.DB = c.RedisDB
	return rc, nil
}

// PostgresConfig converts the PostgreSQL settings.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPass
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSL
	pc.MaxConns = c.DBMaxConns
	pc.MinConns = c.DBMinConns
	return pc
}

// TracingConfig converts the OpenTelemetry settings.
func (c *Config) TracingConfig(serviceName string) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}
