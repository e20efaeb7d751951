// Package breaker guards calls to flaky dependencies with a circuit breaker
// whose state is exported to Prometheus.
package breaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = gobreaker.ErrOpenState

// Config holds circuit breaker settings.
type Config struct {
	// Name identifies the breaker in metrics and logs.
	Name string
	// MaxRequests is how many trial calls the half-open state admits.
	MaxRequests uint32
	// Interval clears the closed-state counts. 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before half-opening.
	Timeout time.Duration
	// FailureRatio trips the breaker once MinRequests calls were seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns sensible defaults for a breaker called name.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var (
	stateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	rejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Total number of calls rejected while the circuit breaker was open",
		},
		[]string{"name"},
	)
)

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Breaker runs functions through a gobreaker circuit breaker.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[struct{}]
	name   string
	logger *slog.Logger
}

// New creates a breaker. logger receives state transitions.
func New(cfg Config, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			stateGauge.WithLabelValues(name).Set(stateValue(to))
		},
	}

	stateGauge.WithLabelValues(cfg.Name).Set(0)

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker[struct{}](settings),
		name:   cfg.Name,
		logger: logger,
	}
}

// Do runs fn unless the breaker is open, in which case ErrOpen is returned
// without calling fn.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if err == ErrOpen || err == gobreaker.ErrTooManyRequests {
		rejectedTotal.WithLabelValues(b.name).Inc()
	}
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
