package placescraper

import (
	"context"
	"time"
)

// DefaultPollInterval is the interval between two evaluations of a page condition.
const DefaultPollInterval = 250 * time.Millisecond

// pollUntil evaluates cond immediately and then every interval until it
// reports done, the timeout elapses or ctx is cancelled. It returns true if
// cond reported done. cond is always evaluated at least once.
func pollUntil(ctx context.Context, timeout, interval time.Duration, cond func(ctx context.Context) bool) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)

	for {
		if cond(ctx) {
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		wait := interval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(wait):
		}
	}
}
