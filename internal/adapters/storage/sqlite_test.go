package storage_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/predmarket/internal/adapters/clock"
	"github.com/alejandrodnm/predmarket/internal/adapters/storage"
	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPriceOracle struct {
	price int64
}

func (o *fixedPriceOracle) Fetch(_ context.Context, symbol string) (domain.Quote, error) {
	return domain.Quote{Symbol: symbol, PriceCents: o.price, Source: "test"}, nil
}

func openTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_FreshDatabaseIsEmpty(t *testing.T) {
	s := openTestDB(t)

	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, state.Accounts)
	assert.Empty(t, state.Predictions)
	assert.Empty(t, state.Stats)
	assert.Equal(t, int64(0), state.NextID)
	assert.Equal(t, domain.Instant(0), state.Clock)
}

func TestSaveDeposit_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDeposit(ctx, "alice", 1000, 1))
	require.NoError(t, s.SaveDeposit(ctx, "alice", 1500, 2)) // upsert, no segunda fila
	require.NoError(t, s.SaveDeposit(ctx, "bob", 300, 3))

	state, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), state.Accounts["alice"])
	assert.Equal(t, int64(300), state.Accounts["bob"])
	assert.Len(t, state.Accounts, 2)
	assert.Equal(t, domain.Instant(3), state.Clock)
}

func TestSavePlacement_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDeposit(ctx, "alice", 1000, 1))

	p := domain.Prediction{
		ID:         0,
		Owner:      "alice",
		Symbol:     "BTC",
		Direction:  domain.DirectionUp,
		Stake:      100,
		EntryPrice: 9_500_000,
		CreatedAt:  2,
		Horizon:    6,
		Status:     domain.StatusActive,
	}
	require.NoError(t, s.SavePlacement(ctx, p, 900, 1, 2))

	state, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.Predictions, 1)
	assert.Equal(t, p, state.Predictions[0])
	assert.Equal(t, int64(900), state.Accounts["alice"])
	assert.Equal(t, int64(1), state.NextID)
	assert.Equal(t, domain.Instant(2), state.Clock)
}

func TestSaveSettlement_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	p := domain.Prediction{
		ID: 0, Owner: "alice", Symbol: "BTC",
		Direction: domain.DirectionUp, Stake: 100,
		EntryPrice: 9_500_000, CreatedAt: 2, Horizon: 6,
		Status: domain.StatusActive,
	}
	require.NoError(t, s.SavePlacement(ctx, p, 900, 1, 2))

	stats := domain.PlayerStats{Address: "alice", Wins: 1, Losses: 0, Profit: 80, Seq: 0}
	require.NoError(t, s.SaveSettlement(ctx, 0, domain.StatusWon, 1080, stats, 9))

	state, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.Predictions, 1)
	assert.Equal(t, domain.StatusWon, state.Predictions[0].Status)
	assert.Equal(t, int64(1080), state.Accounts["alice"])
	assert.Equal(t, stats, state.Stats["alice"])
	assert.Equal(t, domain.Instant(9), state.Clock)
}

func TestSaveSettlement_StatsUpsertKeepsSeq(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	first := domain.PlayerStats{Address: "alice", Wins: 1, Profit: 80, Seq: 0}
	require.NoError(t, s.SaveSettlement(ctx, 0, domain.StatusWon, 1080, first, 5))

	// Un segundo settlement del mismo jugador actualiza los contadores
	// pero no toca el seq original.
	second := domain.PlayerStats{Address: "alice", Wins: 1, Losses: 1, Profit: -20, Seq: 7}
	require.NoError(t, s.SaveSettlement(ctx, 1, domain.StatusLost, 980, second, 6))

	state, err := s.Load(ctx)
	require.NoError(t, err)

	got := state.Stats["alice"]
	assert.Equal(t, int64(1), got.Wins)
	assert.Equal(t, int64(1), got.Losses)
	assert.Equal(t, int64(-20), got.Profit)
	assert.Equal(t, int64(0), got.Seq)
}

func TestSaveClock_Persists(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveClock(ctx, 42))
	require.NoError(t, s.SaveClock(ctx, 43))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Instant(43), state.Clock)
}

// A dropped SavePlacement leaves a gap in the journal. The loaded
// state must still restore into a working engine.
func TestLoad_GappedJournalRestores(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDeposit(ctx, "alice", 1000, 1))
	p0 := domain.Prediction{
		ID: 0, Owner: "alice", Symbol: "BTC",
		Direction: domain.DirectionUp, Stake: 100,
		EntryPrice: 1000, CreatedAt: 2, Horizon: 6,
		Status: domain.StatusActive,
	}
	require.NoError(t, s.SavePlacement(ctx, p0, 900, 1, 2))

	// Id 1's write never happened; id 2 landed and bumped the counter.
	p2 := p0
	p2.ID = 2
	p2.CreatedAt = 4
	require.NoError(t, s.SavePlacement(ctx, p2, 750, 3, 4))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Predictions, 2)
	assert.Equal(t, int64(3), state.NextID)

	eng := engine.New(engine.Config{}, clock.NewCounter(state.Clock), &fixedPriceOracle{price: 1000}, nil)
	require.NoError(t, eng.Restore(state))

	_, err = eng.PredictionDetails(1)
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
	placed, err := eng.PlacePrediction(ctx, "alice", "SOL", "UP", 10, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(3), placed.ID)
}

func TestLoad_PredictionsOrderedByID(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	for i := int64(2); i >= 0; i-- {
		p := domain.Prediction{
			ID: i, Owner: "alice", Symbol: "BTC",
			Direction: domain.DirectionDown, Stake: 10,
			EntryPrice: 100, CreatedAt: domain.Instant(i), Horizon: 1,
			Status: domain.StatusActive,
		}
		require.NoError(t, s.SavePlacement(ctx, p, 1000-10*i, i+1, domain.Instant(i)))
	}

	state, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.Predictions, 3)
	for i, p := range state.Predictions {
		assert.Equal(t, int64(i), p.ID)
	}
}
