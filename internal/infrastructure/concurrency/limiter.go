// Package concurrency provides a bounded fan-out executor.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultCeiling is the number of tasks allowed in flight when none is configured
const DefaultCeiling = 5

// Limiter runs indexed tasks with at most Ceiling of them in flight.
// Tasks cannot fail, so one task never cancels its siblings.
type Limiter struct {
	ceiling int
}

// NewLimiter creates a Limiter; a ceiling below 1 falls back to DefaultCeiling
func NewLimiter(ceiling int) *Limiter {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	return &Limiter{ceiling: ceiling}
}

// Ceiling returns the in-flight limit
func (l *Limiter) Ceiling() int {
	return l.ceiling
}

// Run calls task(ctx, i) for every i in [0, n) and returns once all calls
// have returned.
func (l *Limiter) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) {
	var eg errgroup.Group
	eg.SetLimit(l.ceiling)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			task(ctx, i)
			return nil
		})
	}
	_ = eg.Wait()
}

// Map applies fn to every item under l and returns the results in input order.
// Each task writes only its own slot.
func Map[T, R any](ctx context.Context, l *Limiter, items []T, fn func(ctx context.Context, item T) R) []R {
	out := make([]R, len(items))
	l.Run(ctx, len(items), func(ctx context.Context, i int) {
		out[i] = fn(ctx, items[i])
	})
	return out
}
