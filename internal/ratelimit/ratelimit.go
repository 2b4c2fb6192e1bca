// Package ratelimit throttles calls to upstream quote providers that publish
// a per-minute request-weight budget.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter spends a per-minute weight budget with a burst of a tenth of it.
type Limiter struct {
	limiter *rate.Limiter
	burst   int
}

// New creates a limiter allowing weightPerMinute units per minute.
func New(weightPerMinute int) *Limiter {
	burst := max(weightPerMinute/10, 1)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(weightPerMinute)/60.0), burst),
		burst:   burst,
	}
}

// Wait blocks until one unit is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN blocks until weight units are available. Weights above the burst
// are clamped so a heavy endpoint never fails outright.
func (l *Limiter) WaitN(ctx context.Context, weight int) error {
	return l.limiter.WaitN(ctx, min(max(weight, 1), l.burst))
}

// Allow reports whether one unit can be spent now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Available returns the units currently in the bucket.
func (l *Limiter) Available() float64 {
	return l.limiter.Tokens()
}
