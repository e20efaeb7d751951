package middleware

import (
	"log/slog"
	"net/http"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation_id, client_id,
// trace_id and span_id in the request context. Mount it after
// RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logger.ClientIDFromContext(ctx) == "" {
				if id := r.Header.Get(ClientIDHeader); id != "" {
					ctx = logger.WithClientID(ctx, id)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
