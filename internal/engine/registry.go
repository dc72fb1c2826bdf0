package engine

import (
	"fmt"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// Registry owns the prediction records and their lifecycle status.
// Ids are assigned sequentially from 0 and never reused; records are
// never deleted, so the backing slice index doubles as the id.
// Transition is the only writer of a record's status.
//
// A restored journal may have holes (a dropped write leaves its id
// missing); a hole reads as NotFound and the id is never reassigned.
// Zero-valued slots (empty Status) mark the holes.
type Registry struct {
	preds []domain.Prediction
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create stores a new ACTIVE record and returns its id. Pure data
// insertion: the caller must have debited the stake already.
func (r *Registry) Create(owner, symbol string, dir domain.Direction, stake, entryPrice int64, createdAt domain.Instant, horizon int64) int64 {
	id := int64(len(r.preds))
	r.preds = append(r.preds, domain.Prediction{
		ID:         id,
		Owner:      owner,
		Symbol:     symbol,
		Direction:  dir,
		Stake:      stake,
		EntryPrice: entryPrice,
		CreatedAt:  createdAt,
		Horizon:    horizon,
		Status:     domain.StatusActive,
	})
	return id
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id int64) (domain.Prediction, error) {
	if id < 0 || id >= int64(len(r.preds)) || r.preds[id].Status == "" {
		return domain.Prediction{}, fmt.Errorf("prediction #%d: %w", id, domain.ErrPredictionNotFound)
	}
	return r.preds[id], nil
}

// Transition moves an ACTIVE record to a terminal status. A second
// attempt on the same record fails, it does not re-execute.
func (r *Registry) Transition(id int64, status domain.Status) error {
	if !status.Terminal() {
		return fmt.Errorf("transition to %s: only WON and LOST are valid targets", status)
	}
	if id < 0 || id >= int64(len(r.preds)) || r.preds[id].Status == "" {
		return fmt.Errorf("prediction #%d: %w", id, domain.ErrPredictionNotFound)
	}
	if r.preds[id].Status != domain.StatusActive {
		return &domain.AlreadySettledError{Status: r.preds[id].Status}
	}
	r.preds[id].Status = status
	return nil
}

// ForOwner returns copies of the owner's predictions in id order.
func (r *Registry) ForOwner(owner string) []domain.Prediction {
	var out []domain.Prediction
	for _, p := range r.preds {
		if p.Status != "" && p.Owner == owner {
			out = append(out, p)
		}
	}
	return out
}

// All returns a copy of every record in id order.
func (r *Registry) All() []domain.Prediction {
	out := make([]domain.Prediction, 0, len(r.preds))
	for _, p := range r.preds {
		if p.Status != "" {
			out = append(out, p)
		}
	}
	return out
}

// NextID returns the id the next Create will assign.
func (r *Registry) NextID() int64 {
	return int64(len(r.preds))
}

// restore replaces the registry contents, used when loading persisted
// state. Ids missing from the journal (a dropped write) stay as holes:
// they read as NotFound and are never reassigned. nextID seeds the id
// sequence so new records continue after the highest ever allocated,
// even when the record with that id was lost.
func (r *Registry) restore(preds []domain.Prediction, nextID int64) error {
	size := nextID
	for _, p := range preds {
		if p.ID < 0 {
			return fmt.Errorf("restore: record has negative id %d", p.ID)
		}
		if p.ID >= size {
			size = p.ID + 1
		}
	}

	slots := make([]domain.Prediction, size)
	for _, p := range preds {
		if slots[p.ID].Status != "" {
			return fmt.Errorf("restore: duplicate id %d", p.ID)
		}
		slots[p.ID] = p
	}
	r.preds = slots
	return nil
}
