package ports

import "github.com/alejandrodnm/predmarket/internal/domain"

// Clock is the time model behind prediction horizons. Two strategies
// implement it: a transaction-counter clock that only moves when
// someone makes it move, and a wall clock backed by real time. The
// engine never assumes which one is active.
type Clock interface {
	// Now returns the current instant. Monotonically non-decreasing.
	Now() domain.Instant

	// Elapsed returns the number of ticks between two readings,
	// never negative.
	Elapsed(since, now domain.Instant) int64

	// Advance moves the clock forward by one tick and returns the new
	// instant. For the wall clock this is a no-op that returns Now.
	Advance() domain.Instant

	// HorizonTicks converts a caller-supplied duration in seconds into
	// this strategy's tick count, at least 1.
	HorizonTicks(seconds int64) int64
}
