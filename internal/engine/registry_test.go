package engine

import (
	"testing"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPrediction(r *Registry, owner string) int64 {
	return r.Create(owner, "BTC", domain.DirectionUp, 100, 9_500_000, 1, 6)
}

func TestRegistry_SequentialIDs(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, int64(0), createPrediction(r, "alice"))
	assert.Equal(t, int64(1), createPrediction(r, "bob"))
	assert.Equal(t, int64(2), createPrediction(r, "alice"))
	assert.Equal(t, int64(3), r.NextID())
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()
	createPrediction(r, "alice")

	_, err := r.Get(1)
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
	_, err = r.Get(-1)
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
}

func TestRegistry_TransitionOnce(t *testing.T) {
	r := NewRegistry()
	id := createPrediction(r, "alice")

	require.NoError(t, r.Transition(id, domain.StatusWon))

	p, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, p.Status)

	// A second attempt fails, it does not re-execute.
	err = r.Transition(id, domain.StatusLost)
	require.ErrorIs(t, err, domain.ErrAlreadySettled)

	p, err = r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, p.Status, "status must survive the failed retry")
}

func TestRegistry_TransitionRejectsNonTerminal(t *testing.T) {
	r := NewRegistry()
	id := createPrediction(r, "alice")

	assert.Error(t, r.Transition(id, domain.StatusActive))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	id := createPrediction(r, "alice")

	p, err := r.Get(id)
	require.NoError(t, err)
	p.Status = domain.StatusLost

	stored, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status, "callers must not mutate stored records")
}

func TestRegistry_ForOwner(t *testing.T) {
	r := NewRegistry()
	createPrediction(r, "alice")
	createPrediction(r, "bob")
	createPrediction(r, "alice")

	preds := r.ForOwner("alice")
	require.Len(t, preds, 2)
	assert.Equal(t, int64(0), preds[0].ID)
	assert.Equal(t, int64(2), preds[1].ID)

	assert.Empty(t, r.ForOwner("carol"))
}

func TestRegistry_Restore(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.restore([]domain.Prediction{
		{ID: 0, Owner: "alice", Status: domain.StatusWon},
		{ID: 1, Owner: "bob", Status: domain.StatusActive},
	}, 2))
	assert.Equal(t, int64(2), r.NextID())

	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Owner)
}

// A dropped journal write leaves its id missing; the registry must load
// anyway, read the hole as NotFound, and keep allocating after the
// persisted id counter.
func TestRegistry_RestoreToleratesGaps(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.restore([]domain.Prediction{
		{ID: 0, Owner: "alice", Status: domain.StatusWon},
		{ID: 2, Owner: "alice", Status: domain.StatusActive},
	}, 3))

	_, err := r.Get(1)
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
	assert.ErrorIs(t, r.Transition(1, domain.StatusWon), domain.ErrPredictionNotFound)

	p, err := r.Get(2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, p.Status)

	preds := r.ForOwner("alice")
	require.Len(t, preds, 2, "holes stay invisible to listings")
	assert.Len(t, r.All(), 2)

	// The hole's id is never reassigned.
	assert.Equal(t, int64(3), r.NextID())
	assert.Equal(t, int64(3), createPrediction(r, "bob"))
}

func TestRegistry_RestoreSeedsNextIDPastRecords(t *testing.T) {
	r := NewRegistry()

	// The highest record was the one whose write got dropped.
	require.NoError(t, r.restore([]domain.Prediction{
		{ID: 0, Owner: "alice", Status: domain.StatusActive},
	}, 2))

	assert.Equal(t, int64(2), r.NextID())
	assert.Equal(t, int64(2), createPrediction(r, "bob"))
}

func TestRegistry_RestoreRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	err := r.restore([]domain.Prediction{
		{ID: 0, Owner: "alice", Status: domain.StatusActive},
		{ID: 0, Owner: "bob", Status: domain.StatusActive},
	}, 1)
	assert.Error(t, err)
}
