package ports

import (
	"context"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// Storage journals the engine's state. The in-memory engine is
// authoritative within an operation; storage writes happen after the
// in-memory commit so a reader never observes a partial update.
// Multi-row writes (placement, settlement) are applied in a single
// transaction.
type Storage interface {
	// Load restores the full game state at startup. A fresh database
	// yields an empty state, not an error.
	Load(ctx context.Context) (*domain.GameState, error)

	// SaveDeposit persists an account's new balance and the clock.
	SaveDeposit(ctx context.Context, address string, balance int64, clock domain.Instant) error

	// SavePlacement persists a new prediction together with the
	// debited owner balance, the id counter and the clock.
	SavePlacement(ctx context.Context, p domain.Prediction, ownerBalance, nextID int64, clock domain.Instant) error

	// SaveSettlement persists a terminal status together with the
	// credited owner balance, the owner's counters and the clock.
	SaveSettlement(ctx context.Context, id int64, status domain.Status, ownerBalance int64, stats domain.PlayerStats, clock domain.Instant) error

	// SaveClock persists a bare clock advance.
	SaveClock(ctx context.Context, clock domain.Instant) error

	// Close releases the underlying database handle.
	Close() error
}
