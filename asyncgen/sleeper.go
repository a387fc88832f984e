package asyncgen

import (
	"context"
	"time"
)

// Sleeper suspends the calling goroutine. Implementations must return early
// with ctx.Err() when the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on a timer. Only the calling goroutine is parked, so any
// number of sequences can be waiting at the same time.
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
