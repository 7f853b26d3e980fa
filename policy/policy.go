package policy

import (
	"context"
	"time"
)

// Fallback is invoked once a task has exhausted all retry attempts. It
// receives the prepare-phase result and the last execution error; its return
// value is used as the execution result and the traversal continues normally.
// Returning an error propagates that error instead.
type Fallback func(ctx context.Context, prep interface{}, err error) (interface{}, error)

// Retry bounds re-attempts of a task's execute phase.
//
//   - MaxAttempts is the total number of attempts (>= 1).
//   - Interval is the delay before each retry.
//   - Fallback, when set, absorbs the terminal failure.
//
// A nil *Retry means "single attempt, propagate the first failure" and is
// therefore the zero-cost default.
type Retry struct {
	MaxAttempts int
	Interval    time.Duration
	Fallback    Fallback
}

// Attempts returns the effective attempt count; nil or non-positive settings
// normalise to a single attempt.
func (r *Retry) Attempts() int {
	if r == nil || r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

// Delay returns the effective inter-attempt delay.
func (r *Retry) Delay() time.Duration {
	if r == nil || r.Interval < 0 {
		return 0
	}
	return r.Interval
}

// WithFallback sets the fallback invoked on terminal failure.
func (r *Retry) WithFallback(fallback Fallback) *Retry {
	r.Fallback = fallback
	return r
}

// New creates a retry policy with the supplied attempt bound and delay.
func New(maxAttempts int, interval time.Duration) *Retry {
	return &Retry{MaxAttempts: maxAttempts, Interval: interval}
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithRetry embeds a run-wide default retry policy in ctx. Tasks without an
// explicit policy fall back to it; tasks with their own policy ignore it.
func WithRetry(ctx context.Context, r *Retry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, r)
}

// FromContext extracts the default retry policy from ctx, or nil.
func FromContext(ctx context.Context) *Retry {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Retry); ok {
		return v
	}
	return nil
}
