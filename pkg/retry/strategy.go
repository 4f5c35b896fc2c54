package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/taker-protocol/taker-client/pkg/retry/backoff"
)

// Strategy determines whether an action should be retried. Strategies may delay
// or cause other side effects.
type Strategy func(attempts uint, err error) bool

// Limit caps the total number of attempts. maxAttempts should be >= 1, since the
// action is always evaluated once.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, err error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of the provided errors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}

		return false
	}
}

// NonRetriableErrors retries everything except errors matching one of the
// provided errors.
func NonRetriableErrors(nonRetriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range nonRetriableErrors {
			if errors.Is(err, e) {
				return false
			}
		}

		return true
	}
}

// Context stops retrying once ctx is done.
func Context(ctx context.Context) Strategy {
	return func(attempts uint, err error) bool {
		return ctx.Err() == nil
	}
}

// Backoff delays the next attempt by the strategy's duration, capped at maxBackoff.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, err error) bool {
		sleeperImpl.Sleep(capDelay(strategy(attempts), maxBackoff))
		return true
	}
}

// BackoffWithJitter is Backoff with a jitter applied after capping. A jitter of
// 0.1 on a 100ms delay yields a delay of 100ms +/- 10ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, err error) bool {
		sleeperImpl.Sleep(withJitter(capDelay(strategy(attempts), maxBackoff), jitter))
		return true
	}
}

// BackoffWithContext is BackoffWithJitter that aborts the wait, and any further
// attempts, when ctx is done.
func BackoffWithContext(ctx context.Context, strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, err error) bool {
		delay := withJitter(capDelay(strategy(attempts), maxBackoff), jitter)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		}
	}
}

func capDelay(delay, maxBackoff time.Duration) time.Duration {
	return time.Duration(math.Min(float64(maxBackoff), float64(delay)))
}

//	<------delay------>
//	 jitter     jitter
func withJitter(delay time.Duration, jitter float64) time.Duration {
	return time.Duration(float64(delay) * (1 + (rand.Float64()*jitter*2 - jitter)))
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
