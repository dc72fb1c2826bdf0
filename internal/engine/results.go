package engine

import "github.com/alejandrodnm/predmarket/internal/domain"

// DepositResult confirms a deposit.
type DepositResult struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
}

// PlacementResult confirms a newly created prediction.
type PlacementResult struct {
	ID           int64            `json:"id"`
	Symbol       string           `json:"symbol"`
	Direction    domain.Direction `json:"direction"`
	Stake        int64            `json:"stake"`
	EntryPrice   int64            `json:"entry_price"`
	PriceSource  string           `json:"price_source"`
	HorizonTicks int64            `json:"horizon_ticks"`
	CreatedAt    domain.Instant   `json:"created_at"`
	NewBalance   int64            `json:"new_balance"`
}

// SettlementResult is the outcome of settling one prediction.
type SettlementResult struct {
	ID          int64         `json:"id"`
	Outcome     domain.Status `json:"outcome"` // WON or LOST
	EntryPrice  int64         `json:"entry_price"`
	ExitPrice   int64         `json:"exit_price"`
	PriceSource string        `json:"price_source"`
	Payout      int64         `json:"payout"` // 0 when LOST
	NewBalance  int64         `json:"new_balance"`
}

// Won reports whether the settlement paid out.
func (r SettlementResult) Won() bool {
	return r.Outcome == domain.StatusWon
}

// SettleFailure records a prediction that could not be settled during
// a settle-all sweep, without aborting the sweep.
type SettleFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// SettleAllResult summarizes a settle-all sweep over the caller's
// eligible ACTIVE predictions.
type SettleAllResult struct {
	Settled []SettlementResult `json:"settled"`
	Failed  []SettleFailure    `json:"failed,omitempty"`
	Skipped int                `json:"skipped"` // ACTIVE but horizon not yet elapsed
}

// PredictionDetails is the full read-side view of one record.
type PredictionDetails struct {
	Prediction     domain.Prediction `json:"prediction"`
	RemainingTicks int64             `json:"remaining_ticks"` // 0 once eligible or terminal
	Settleable     bool              `json:"settleable"`      // ACTIVE and horizon elapsed
}

// UserStatsResult aggregates a user's counters and prediction buckets.
type UserStatsResult struct {
	Account string                  `json:"account"`
	Counts  domain.PredictionCounts `json:"counts"`
	Wins    int64                   `json:"wins"`
	Losses  int64                   `json:"losses"`
	WinRate float64                 `json:"win_rate"`
	Profit  int64                   `json:"profit"`
	Balance int64                   `json:"balance"`
}
