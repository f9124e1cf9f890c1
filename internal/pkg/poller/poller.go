// Package poller implements a bounded-attempt probe loop: a fixed number of
// attempts with a fixed delay, terminating on first success or on exhaustion.
// Callers own the decision of what to do when the budget runs out.
package poller

import (
	"context"
	"time"
)

type Poller struct {
	Attempts int
	Delay    time.Duration
}

func New(attempts int, delay time.Duration) Poller {
	if attempts < 1 {
		attempts = 1
	}
	return Poller{Attempts: attempts, Delay: delay}
}

// Do runs fn up to p.Attempts times. fn reports done=true to stop early; an
// error aborts immediately. The return value reports whether fn ever
// completed, so exhaustion is distinguishable from failure.
func (p Poller) Do(ctx context.Context, fn func(ctx context.Context) (done bool, err error)) (bool, error) {
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if attempt > 0 && p.Delay > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(p.Delay):
			}
		}

		done, err := fn(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}
