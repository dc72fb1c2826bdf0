package domain

// PlayerStats are the per-owner aggregate counters maintained by the
// settlement engine. Profit is a signed running total independent of
// balance: +payout-stake on a win, -stake on a loss.
type PlayerStats struct {
	Address string
	Wins    int64
	Losses  int64
	Profit  int64
	Seq     int64 // first-settlement order, breaks leaderboard ties
}

// Settled returns the number of terminal predictions behind the counters.
func (s PlayerStats) Settled() int64 {
	return s.Wins + s.Losses
}

// WinRate returns wins over settled predictions, 0 if nothing settled.
func (s PlayerStats) WinRate() float64 {
	settled := s.Settled()
	if settled == 0 {
		return 0
	}
	return float64(s.Wins) / float64(settled)
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	Address string `json:"address"`
	Wins    int64  `json:"wins"`
	Profit  int64  `json:"profit"`
}

// PredictionCounts buckets a user's predictions by status.
type PredictionCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
}

// GameStats are the global read-only totals.
type GameStats struct {
	TotalPredictions  int64   `json:"total_predictions"`
	ActivePredictions int64   `json:"active_predictions"`
	TotalPlayers      int64   `json:"total_players"`
	TotalInPool       int64   `json:"total_in_pool"`       // sum of all account balances
	TotalActiveStakes int64   `json:"total_active_stakes"` // stakes locked in ACTIVE predictions
	ClockInstant      Instant `json:"clock_instant"`
}

// GameState is the full persisted state of one game, loaded at startup.
type GameState struct {
	Accounts    map[string]int64
	Predictions []Prediction
	Stats       map[string]PlayerStats
	NextID      int64
	Clock       Instant
}
