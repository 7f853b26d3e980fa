package clock

import (
	"context"
	"time"
)

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// SleepFunc pauses for the supplied duration or until ctx is cancelled.
// Override in tests to avoid real delays. Other goroutines are never blocked
// by the pause.
var SleepFunc = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sleep is a thin wrapper around SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error { return SleepFunc(ctx, d) }
