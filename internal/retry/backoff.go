package retry

import (
	"time"
)

// Policy computes the delay before a failed queue item may be attempted
// again. Delays grow exponentially with the item's attempt counter and are
// capped, so a persistently failing item settles into a slow retry cadence
// instead of hammering the platform every processor pass.
type Policy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// DefaultPolicy returns the delivery retry defaults: 5 minutes doubling up to
// 6 hours, 5 attempts before an item is declared permanently failed.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 5 * time.Minute,
		MaxDelay:     6 * time.Hour,
		Multiplier:   2.0,
		MaxAttempts:  5,
	}
}

// DelayForAttempt returns the backoff delay after the given attempt count
// (1-based: the delay scheduled after the first failure is DelayForAttempt(1)).
func (p Policy) DelayForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= p.Multiplier
		if delay >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}

	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// NextAttemptAt returns when the item may next be tried, given the attempt
// count after the failure being recorded.
func (p Policy) NextAttemptAt(now time.Time, attempt int) time.Time {
	return now.Add(p.DelayForAttempt(attempt))
}

// Exhausted reports whether the attempt counter has used up the retry budget.
func (p Policy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}
