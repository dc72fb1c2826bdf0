// Package clock provides the two time strategies behind the engine's
// Clock port: a logical transaction counter and the wall clock.
package clock

import "github.com/alejandrodnm/predmarket/internal/domain"

// secondsPerTick is the counter strategy's conversion rate when a
// caller expresses a horizon in seconds: one transaction ≈ 10 s.
const secondsPerTick = 10

// Counter is the logical clock: time passes only when a transaction
// advances it. Deterministic, so settlement outcomes are reproducible
// in tests and demos.
type Counter struct {
	counter int64
}

// NewCounter creates a counter clock starting at the given instant
// (0 for a fresh game, the persisted value after a restart).
func NewCounter(start domain.Instant) *Counter {
	return &Counter{counter: int64(start)}
}

// Now returns the current transaction number.
func (c *Counter) Now() domain.Instant {
	return domain.Instant(c.counter)
}

// Elapsed is a direct subtraction of tick numbers.
func (c *Counter) Elapsed(since, now domain.Instant) int64 {
	if now < since {
		return 0
	}
	return int64(now - since)
}

// Advance increments the counter by one tick.
func (c *Counter) Advance() domain.Instant {
	c.counter++
	return domain.Instant(c.counter)
}

// HorizonTicks converts seconds into transaction ticks, at least 1.
func (c *Counter) HorizonTicks(seconds int64) int64 {
	ticks := seconds / secondsPerTick
	if ticks < 1 {
		return 1
	}
	return ticks
}
