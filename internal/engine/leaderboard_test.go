package engine

import (
	"fmt"
	"testing"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_RecordWinAndLoss(t *testing.T) {
	s := NewStats()

	st := s.RecordWin("alice", 180, 100)
	assert.Equal(t, int64(1), st.Wins)
	assert.Equal(t, int64(80), st.Profit)

	st = s.RecordLoss("alice", 50)
	assert.Equal(t, int64(1), st.Losses)
	assert.Equal(t, int64(30), st.Profit)

	got := s.Get("alice")
	assert.Equal(t, int64(1), got.Wins)
	assert.Equal(t, int64(1), got.Losses)
	assert.InDelta(t, 0.5, got.WinRate(), 0.001)
}

func TestStats_GetUnknownOwner(t *testing.T) {
	s := NewStats()
	st := s.Get("nobody")
	assert.Zero(t, st.Wins)
	assert.Zero(t, st.Profit)
	assert.Zero(t, st.WinRate())
}

func TestStats_LeaderboardSortedByWins(t *testing.T) {
	s := NewStats()
	s.RecordWin("alice", 180, 100)
	s.RecordWin("bob", 180, 100)
	s.RecordWin("bob", 180, 100)
	s.RecordWin("carol", 180, 100)

	entries := s.Leaderboard(SortByWins)
	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].Address)
	assert.Equal(t, 1, entries[0].Rank)
	// alice and carol tie on 1 win: insertion order breaks the tie.
	assert.Equal(t, "alice", entries[1].Address)
	assert.Equal(t, "carol", entries[2].Address)
}

func TestStats_LeaderboardSortedByProfit(t *testing.T) {
	s := NewStats()
	s.RecordWin("alice", 180, 100)  // +80
	s.RecordLoss("bob", 10)         // -10
	s.RecordWin("carol", 900, 500)  // +400

	entries := s.Leaderboard(SortByProfit)
	require.Len(t, entries, 3)
	assert.Equal(t, "carol", entries[0].Address)
	assert.Equal(t, int64(400), entries[0].Profit)
	assert.Equal(t, "alice", entries[1].Address)
	assert.Equal(t, "bob", entries[2].Address)
}

func TestStats_LeaderboardTruncatesToTen(t *testing.T) {
	s := NewStats()
	for i := 0; i < 15; i++ {
		s.RecordWin(fmt.Sprintf("player-%02d", i), 18, 10)
	}

	entries := s.Leaderboard(SortByWins)
	require.Len(t, entries, 10)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestStats_RestoreKeepsSeqOrder(t *testing.T) {
	restored := NewStats()
	restored.restore(map[string]domain.PlayerStats{
		"bob":   {Address: "bob", Wins: 1, Profit: 80, Seq: 1},
		"alice": {Address: "alice", Wins: 1, Profit: 80, Seq: 0},
	})

	// Equal wins: the persisted Seq decides, not map iteration order.
	entries := restored.Leaderboard(SortByWins)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Address)
	assert.Equal(t, "bob", entries[1].Address)
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByWins, key)

	key, err = ParseSortKey("profit")
	require.NoError(t, err)
	assert.Equal(t, SortByProfit, key)

	_, err = ParseSortKey("balance")
	assert.Error(t, err)
}
