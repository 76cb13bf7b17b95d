// Package circuitbreaker wraps sony/gobreaker with typed results.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/dex-router/internal/apperror"
)

// Config holds circuit breaker settings.
type Config struct {
	Name        string
	MaxRequests uint32        // allowed through while half-open
	Interval    time.Duration // cyclic period to clear counts while closed
	Timeout     time.Duration // how long to stay open before probing
	MinRequests uint32        // minimum requests before tripping
	FailureRate float64       // trip when failure ratio reaches this
}

// DefaultConfig returns settings tuned for flaky external APIs.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			rate := float64(counts.TotalFailures) / float64(counts.Requests)
			return rate >= cfg.FailureRate
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker. When the breaker is open the returned
// error carries CodeCircuitOpen.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return result, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext(c.cb.Name()))
		}
		return result, err
	}
	return result, nil
}

// State returns the current breaker state string.
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}
