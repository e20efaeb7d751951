package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON response returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status `json:"status"`
	Optional bool   `json:"optional,omitempty"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	optional bool
}

// Handler provides HTTP health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
	timeout  time.Duration
}

// NewHandler creates a new health check handler.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]registration),
		timeout:  5 * time.Second,
	}
}

// Register adds a named checker whose failure makes the service not ready.
func (h *Handler) Register(name string, checker Checker) {
	h.register(name, checker, false)
}

// RegisterOptional adds a named checker whose failure only degrades readiness.
// The review store keeps working when the event broker is unreachable.
func (h *Handler) RegisterOptional(name string, checker Checker) {
	h.register(name, checker, true)
}

func (h *Handler) register(name string, checker Checker, optional bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{check: checker, optional: optional}
}

// LivenessHandler always reports up while the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// Check runs every registered checker and aggregates the result.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	checkers := make(map[string]registration, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	h.mu.RUnlock()

	checks := make(map[string]CheckResult, len(checkers))
	overall := StatusUp

	for name, reg := range checkers {
		if err := reg.check(ctx); err != nil {
			checks[name] = CheckResult{Status: StatusDown, Optional: reg.optional, Error: err.Error()}
			switch {
			case !reg.optional:
				overall = StatusDown
			case overall == StatusUp:
				overall = StatusDegraded
			}
			continue
		}
		checks[name] = CheckResult{Status: StatusUp, Optional: reg.optional}
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

// ReadinessHandler returns 503 when a required dependency is down and 200
// otherwise, including the degraded state.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, resp)
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
