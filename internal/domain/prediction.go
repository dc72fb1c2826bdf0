package domain

import "strings"

// Direction is the side of a price prediction.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// ParseDirection normalizes user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return DirectionUp, nil
	case "DOWN":
		return DirectionDown, nil
	default:
		return "", &InvalidDirectionError{Input: s}
	}
}

// Status represents the lifecycle of a prediction.
// ACTIVE is the only non-terminal state; WON and LOST are final.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusWon    Status = "WON"
	StatusLost   Status = "LOST"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// Instant is a logical clock reading. For the counter clock it is a
// transaction number; for the wall clock it is a Unix timestamp in
// seconds. Only differences between two instants are meaningful.
type Instant int64

// Prediction is a single bet on price movement over a fixed horizon.
// All fields except Status are immutable once the record is created;
// Status is written exactly once, by the registry's Transition.
type Prediction struct {
	ID         int64     `json:"id"`
	Owner      string    `json:"owner"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Stake      int64     `json:"stake"`       // minor units, debited at creation
	EntryPrice int64     `json:"entry_price"` // minor units, captured at creation
	CreatedAt  Instant   `json:"created_at"`
	Horizon    int64     `json:"horizon"` // ticks until eligible for settlement
	Status     Status    `json:"status"`
}

// Remaining returns how many ticks are still missing before the
// prediction can be settled, given the elapsed ticks since creation.
func (p Prediction) Remaining(elapsed int64) int64 {
	if elapsed >= p.Horizon {
		return 0
	}
	return p.Horizon - elapsed
}
