// Package backoff provides delay strategies for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns the time to wait before the next attempt. Attempts start at 1.
type Strategy func(attempts uint) time.Duration

// Constant always waits interval.
func Constant(interval time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return interval
	}
}

// exponential waits baseDelay * base^(attempts - 1), saturating on overflow.
func exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if delay >= math.MaxInt64 {
			return math.MaxInt64
		}
		return time.Duration(delay)
	}
}

// BinaryExponential doubles the delay on every attempt.
//
// Ex. BinaryExponential(500*time.Millisecond) = 500ms, 1s, 2s, 4s, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return exponential(baseDelay, 2)
}
