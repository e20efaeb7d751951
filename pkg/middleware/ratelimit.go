package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// visitor tracks a token bucket per client.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore holds per-client limiters. Entries idle for longer than ttl
// are evicted on a sweep that runs at most once per ttl.
type visitorStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	nowFunc   func() time.Time
}

func newVisitorStore(rps float64, burst int, ttl time.Duration) *visitorStore {
	return &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

// getVisitor returns (or creates) the limiter of key.
func (s *visitorStore) getVisitor(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if now.Sub(s.lastSweep) > s.ttl {
		s.sweep(now)
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep must be called with mu held.
func (s *visitorStore) sweep(now time.Time) {
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, key)
		}
	}
	s.lastSweep = now
}

func (s *visitorStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// RateLimit enforces a per-client token bucket on state-changing requests,
// keyed by the client id placed in context by ClientID, or the remote IP when
// there is none. Reads are not limited. Exceeding the bucket returns 429.
func RateLimit(rps float64, burst int, log *slog.Logger) func(http.Handler) http.Handler {
	const idleTTL = 3 * time.Minute
	store := newVisitorStore(rps, burst, idleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := logger.ClientIDFromContext(r.Context())
			if key == "" {
				key = remoteIP(r)
			}

			if !store.getVisitor(key).Allow() {
				log.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests, slow down"},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
