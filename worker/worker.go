package worker

import (
	"context"
	"time"
)

// Worker is a long running loop driven by the worker command.
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker runs a tick function in a loop. Delay spaces ticks after a
// clean round; ErrDelay spaces them after an error or an idle round, so a
// busy worker spins fast while an idle one backs off.
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick ticks until ctx is cancelled.
func (w *TickWorker) StartTick(ctx context.Context, onTick func(ctx context.Context) error) error {
	if w.Delay <= 0 {
		w.Delay = 100 * time.Millisecond
	}

	if w.ErrDelay <= 0 {
		w.ErrDelay = time.Second
	}

	dur := time.Millisecond
	timer := time.NewTimer(dur)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := onTick(ctx); err != nil {
				dur = w.ErrDelay
			} else {
				dur = w.Delay
			}

			timer.Reset(dur)
		}
	}
}

// Backoff returns the exponential retry delay for the given attempt,
// min(base * 2^attempt, cap). Attempt counting starts at zero; callers
// reset it on the next success.
func Backoff(base, cap time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}

	if cap <= 0 {
		cap = time.Minute
	}

	dur := base
	for i := 0; i < attempt; i++ {
		dur *= 2
		if dur >= cap {
			return cap
		}
	}

	if dur > cap {
		return cap
	}

	return dur
}
