package clock

import (
	"time"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// Wall is real time: one tick is one second. Holding it behind the
// same interface as Counter means the engine never knows whether time
// is simulated or real.
type Wall struct {
	// now is swappable for tests.
	now func() time.Time
}

// NewWall creates a wall clock.
func NewWall() *Wall {
	return &Wall{now: time.Now}
}

// NewWallAt creates a wall clock reading from the given source.
func NewWallAt(now func() time.Time) *Wall {
	return &Wall{now: now}
}

// Now returns the current Unix timestamp in seconds.
func (w *Wall) Now() domain.Instant {
	return domain.Instant(w.now().Unix())
}

// Elapsed is the seconds difference between two readings. Epoch
// arithmetic already accounts for month lengths and leap years.
func (w *Wall) Elapsed(since, now domain.Instant) int64 {
	if now < since {
		return 0
	}
	return int64(now - since)
}

// Advance is a no-op: real time cannot be pushed. Returns Now so
// callers can still log the instant.
func (w *Wall) Advance() domain.Instant {
	return w.Now()
}

// HorizonTicks takes seconds directly, at least 1.
func (w *Wall) HorizonTicks(seconds int64) int64 {
	if seconds < 1 {
		return 1
	}
	return seconds
}
