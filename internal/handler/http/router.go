package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/health"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/middleware"
)

// ServiceName labels metrics and spans of the HTTP layer.
const ServiceName = "review"

// Services bundles the application services the router exposes.
type Services struct {
	Reviews  *service.ReviewService
	Sessions *service.SessionService
	Users    *service.UserService
	Catalog  *service.CatalogService
}

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
	// CatalogMaxAge is the Cache-Control max-age of catalog responses.
	CatalogMaxAge  int
	RequestTimeout time.Duration
	// RateLimitRPS and RateLimitBurst bound each client's writes. A zero
	// RateLimitRPS disables the limit.
	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultRouterConfig returns sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORS:           middleware.DefaultCORSConfig(),
		CatalogMaxAge:  300,
		RequestTimeout: 30 * time.Second,
	}
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)
	sessionHandler := NewSessionHandler(svcs.Sessions, logger)
	userHandler := NewUserHandler(svcs.Users, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// The catalog is static and shared by every client.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{productId}", catalogHandler.GetProduct)
		})

		// Everything else is scoped to the calling client.
		r.Group(func(r chi.Router) {
			r.Use(middleware.ClientID)
			r.Use(middleware.NoStore)
			if cfg.RateLimitRPS > 0 {
				r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
			}

			const product = "/products/{productId}"
			r.Get(product+"/reviews", reviewHandler.ListReviews)
			r.Post(product+"/reviews", reviewHandler.AddReview)
			r.Get(product+"/reviews/summary", reviewHandler.Summary)
			r.Post(product+"/reviews/{reviewId}/like", reviewHandler.Like)
			r.Post(product+"/reviews/{reviewId}/dislike", reviewHandler.Dislike)
			r.Post(product+"/reviews/{reviewId}/report", reviewHandler.Report)

			r.Get(product+"/session", sessionHandler.GetSession)
			r.Post(product+"/reviews/{reviewId}/delete-request", sessionHandler.RequestDelete)
			r.Post(product+"/delete/confirm", sessionHandler.ConfirmDelete)
			r.Post(product+"/delete/cancel", sessionHandler.CancelDelete)
			r.Post(product+"/reviews/{reviewId}/edit", sessionHandler.BeginEdit)
			r.Put(product+"/edit", sessionHandler.UpdateDraft)
			r.Post(product+"/edit/save", sessionHandler.SaveEdit)
			r.Post(product+"/edit/cancel", sessionHandler.CancelEdit)

			r.Post("/users", userHandler.Register)
			r.Get("/users/me", userHandler.Me)
			r.Delete("/users/me", userHandler.Logout)
		})
	})

	return r
}
