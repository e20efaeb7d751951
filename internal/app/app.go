package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/config"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/event"
	handler "github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/handler/http"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/memory"
	pgrepo "github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/postgres"
	redisrepo "github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/redis"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/breaker"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/database"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/health"
	pkgkafka "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/kafka"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/middleware"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/tracing"
)

// ServiceName identifies the service in traces, metrics and logs.
const ServiceName = "review"

// App wires together all dependencies and runs the review service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.TracingConfig(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	healthHandler := health.NewHandler()

	kv, err := a.openStore(ctx, healthHandler)
	if err != nil {
		_ = a.Shutdown()
		return nil, err
	}

	publisher := a.newPublisher(healthHandler)

	// Build the dependency graph.
	reviews := repository.NewReviewStore(kv, logger)
	users := repository.NewUserStore(kv, logger)
	sessions := repository.NewSessionStore(kv)

	svcs := handler.Services{
		Reviews:  service.NewReviewService(reviews, users, sessions, publisher, cfg.SuccessNoticeTTL(), logger),
		Sessions: service.NewSessionService(reviews, users, sessions, publisher, logger),
		Users:    service.NewUserService(users, logger),
		Catalog:  service.NewCatalogService(),
	}

	routerCfg := handler.DefaultRouterConfig()
	routerCfg.CORS = middleware.DefaultCORSConfig()
	routerCfg.CORS.AllowedOrigins = cfg.CORSAllowedOrigins
	routerCfg.PprofAllowedCIDRs = cfg.PprofAllowedCIDRs
	routerCfg.RateLimitRPS = cfg.RateLimitRPS
	routerCfg.RateLimitBurst = cfg.RateLimitBurst
	router := handler.NewRouter(svcs, healthHandler, routerCfg, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStore connects the configured KV backend and registers its health
// check.
func (a *App) openStore(ctx context.Context, healthHandler *health.Handler) (repository.KV, error) {
	cfg, logger := a.cfg, a.logger

	switch cfg.StoreBackend {
	case config.BackendRedis:
		redisCfg, err := cfg.RedisConfig()
		if err != nil {
			return nil, err
		}
		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", redisCfg.DB),
		)

		kv := redisrepo.NewKV(rdb, cfg.UpdateRetries)
		healthHandler.Register("redis", kv.Ping)
		return kv, nil

	case config.BackendPostgres:
		pgCfg := cfg.PostgresConfig()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.Int("port", pgCfg.Port),
			slog.String("database", pgCfg.DBName),
		)
		database.RegisterPoolMetrics(pool, ServiceName)

		// Run database migrations.
		if err := pgrepo.Migrate(ctx, pool, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return pgrepo.NewKV(pool), nil

	case config.BackendMemory:
		logger.Warn("using in-memory store, reviews are lost on restart")
		return memory.NewKV(), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// newPublisher returns the Kafka event producer, or a no-op publisher when
// events are disabled.
func (a *App) newPublisher(healthHandler *health.Handler) event.Publisher {
	if !a.cfg.EventsActive() {
		a.logger.Info("review events disabled")
		return event.NoopPublisher{}
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	// Reviews keep working while the broker is down.
	healthHandler.RegisterOptional("kafka", a.producer.Ping)

	cb := breaker.New(breaker.DefaultConfig("kafka-review-events"), a.logger)
	return event.NewProducer(a.producer, cb, a.logger)
}

// Handler returns the HTTP handler, for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.StoreBackend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, then the store connection.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	if a.httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer httpCancel()
		if err := a.httpServer.Shutdown(httpCtx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
