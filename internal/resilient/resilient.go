// Package resilient wraps the selector's external sources with retry,
// circuit breaking and a per-call deadline, so a slow or failing
// collaborator degrades into a skipped tier instead of a stalled call.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/abhisek/conjuga/internal/logger"
)

// Config holds configuration for the resilient wrappers.
type Config struct {
	// EnableCircuitBreaker enables the circuit breaker pattern.
	EnableCircuitBreaker bool

	// EnableRetry enables retry with backoff.
	EnableRetry bool

	// MaxAttempts includes the first call.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	// CallTimeout bounds every call, retries included. Zero disables it.
	CallTimeout time.Duration

	// Logger for resilience events.
	Logger *logger.Logger
}

// DefaultConfig returns defaults tuned for in-process and local sources
// answering inside one selection call.
func DefaultConfig() Config {
	return Config{
		EnableCircuitBreaker: true,
		EnableRetry:          true,
		MaxAttempts:          2,
		InitialDelay:         25 * time.Millisecond,
		MaxDelay:             200 * time.Millisecond,
		FailureThreshold:     3,
		OpenTimeout:          30 * time.Second,
		CallTimeout:          750 * time.Millisecond,
	}
}

// guard composes the patterns around calls returning T.
type guard[T any] struct {
	name           string
	circuitBreaker circuitbreaker.CircuitBreaker[T]
	retrier        retry.Retry[T]
	timeout        time.Duration
	log            *logger.Logger
}

func newGuard[T any](name string, cfg Config) *guard[T] {
	g := &guard[T]{
		name:    name,
		timeout: cfg.CallTimeout,
		log:     logger.OrNop(cfg.Logger),
	}

	if cfg.EnableCircuitBreaker {
		threshold := cfg.FailureThreshold
		if threshold <= 0 {
			threshold = 3
		}
		g.circuitBreaker = circuitbreaker.New[T](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				g.log.Warn("circuit breaker state change",
					"source", name,
					"from", from.String(),
					"to", to.String())
			},
		})
	}

	if cfg.EnableRetry && cfg.MaxAttempts > 1 {
		g.retrier = retry.New[T](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		})
	}

	return g
}

// isRetryable retries everything except cancellation and deadlines.
func isRetryable(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (g *guard[T]) run(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var (
		out T
		err error
	)
	switch {
	case g.circuitBreaker != nil && g.retrier != nil:
		out, err = g.circuitBreaker.Execute(ctx, func(ctx context.Context) (T, error) {
			return g.retrier.Do(ctx, op)
		})
	case g.circuitBreaker != nil:
		out, err = g.circuitBreaker.Execute(ctx, op)
	case g.retrier != nil:
		out, err = g.retrier.Do(ctx, op)
	default:
		out, err = op(ctx)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", g.name, err)
	}
	return out, nil
}
