// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience methods.
// Each aggregator source gets its own limiter tuned to its published limit.
type Limiter struct {
	limiter *rate.Limiter
}

// NewPerSecond creates a limiter allowing requestsPerSecond with burst 1.
// Burst 1 means requests are evenly spaced, which is what public
// aggregator APIs expect from free-tier callers.
func NewPerSecond(requestsPerSecond float64) *Limiter {
	return NewWithBurst(requestsPerSecond, 1)
}

// NewWithBurst creates a limiter with an explicit burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// SetRate updates the requests-per-second limit.
func (l *Limiter) SetRate(requestsPerSecond float64) {
	l.limiter.SetLimit(rate.Limit(requestsPerSecond))
}

// WaitWithTimeout waits for a token with an upper bound on the wait.
func (l *Limiter) WaitWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.limiter.Wait(ctx)
}
