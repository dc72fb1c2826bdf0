package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/ports"
)

const (
	defaultPayoutNum = 18
	defaultPayoutDen = 10
)

// Config holds the engine's policy values.
type Config struct {
	// PayoutNum/PayoutDen define the winning multiplier as an integer
	// ratio. Default 18/10 (1.8x, floor division).
	PayoutNum int64
	PayoutDen int64

	// MinDeposit rejects deposits below the floor. 0 disables.
	MinDeposit int64

	// MinStake rejects stakes below the floor. 0 disables.
	MinStake int64
}

// Engine is the prediction game core. It owns the ledger, the
// prediction registry and the per-player counters, and orchestrates
// the clock and the price oracle to settle bets.
//
// One operation runs at a time: the mutex serializes every call, so an
// operation's mutations (debit+create, credit+transition+counters) are
// visible either fully or not at all.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	clock    ports.Clock
	oracle   ports.PriceOracle
	store    ports.Storage // nil → in-memory only
	ledger   *Ledger
	registry *Registry
	stats    *Stats
}

// New wires an engine from its collaborators. store may be nil for an
// ephemeral game.
func New(cfg Config, clock ports.Clock, oracle ports.PriceOracle, store ports.Storage) *Engine {
	if cfg.PayoutNum <= 0 || cfg.PayoutDen <= 0 {
		cfg.PayoutNum = defaultPayoutNum
		cfg.PayoutDen = defaultPayoutDen
	}
	return &Engine{
		cfg:      cfg,
		clock:    clock,
		oracle:   oracle,
		store:    store,
		ledger:   NewLedger(),
		registry: NewRegistry(),
		stats:    NewStats(),
	}
}

// Restore loads previously persisted state into the engine. Call once,
// before serving operations.
func (e *Engine) Restore(state *domain.GameState) error {
	if state == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.restore(state.Accounts)
	if err := e.registry.restore(state.Predictions, state.NextID); err != nil {
		return fmt.Errorf("engine.Restore: %w", err)
	}
	e.stats.restore(state.Stats)
	return nil
}

// Deposit credits funds to an account, creating it on first use.
func (e *Engine) Deposit(ctx context.Context, account string, amount int64) (*DepositResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Advance()

	if e.cfg.MinDeposit > 0 && amount < e.cfg.MinDeposit {
		return nil, fmt.Errorf("deposit %d below minimum %d: %w", amount, e.cfg.MinDeposit, domain.ErrInvalidAmount)
	}
	balance, err := e.ledger.Deposit(account, amount)
	if err != nil {
		return nil, err
	}

	e.persistDeposit(ctx, account, balance, now)
	return &DepositResult{Account: account, Amount: amount, NewBalance: balance}, nil
}

// Balance returns the account's available balance, 0 if unknown.
func (e *Engine) Balance(account string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Balance(account)
}

// PlacePrediction stakes part of the caller's balance on the symbol's
// price direction over the given horizon. The entry price is captured
// now; the stake is debited only after the price fetch succeeds, so a
// failed fetch leaves no trace.
func (e *Engine) PlacePrediction(ctx context.Context, account, symbol, direction string, stake, horizonSeconds int64) (*PlacementResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Advance()

	dir, err := domain.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrInvalidSymbol
	}
	if stake <= 0 {
		return nil, fmt.Errorf("stake %d: %w", stake, domain.ErrInvalidAmount)
	}
	if e.cfg.MinStake > 0 && stake < e.cfg.MinStake {
		return nil, fmt.Errorf("stake %d below minimum %d: %w", stake, e.cfg.MinStake, domain.ErrInvalidAmount)
	}
	if have := e.ledger.Balance(account); have < stake {
		return nil, &domain.InsufficientBalanceError{Have: have, Need: stake}
	}

	quote, err := e.fetchPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// Validation passed and the entry price is in hand: from here on
	// every mutation must land together.
	if err := e.ledger.Debit(account, stake); err != nil {
		return nil, err
	}
	horizon := e.clock.HorizonTicks(horizonSeconds)
	id := e.registry.Create(account, symbol, dir, stake, quote.PriceCents, now, horizon)

	p, _ := e.registry.Get(id)
	e.persistPlacement(ctx, p, e.ledger.Balance(account), now)

	slog.Info("prediction placed",
		"id", id,
		"owner", account,
		"symbol", symbol,
		"direction", dir,
		"stake", stake,
		"entry_price", quote.PriceCents,
		"horizon_ticks", horizon,
		"source", quote.Source,
	)

	return &PlacementResult{
		ID:           id,
		Symbol:       symbol,
		Direction:    dir,
		Stake:        stake,
		EntryPrice:   quote.PriceCents,
		PriceSource:  quote.Source,
		HorizonTicks: horizon,
		CreatedAt:    now,
		NewBalance:   e.ledger.Balance(account),
	}, nil
}

// SettlePrediction resolves one ACTIVE prediction owned by the caller.
// Until the horizon elapses it fails with TooEarly and changes
// nothing; it can be retried any number of times.
func (e *Engine) SettlePrediction(ctx context.Context, account string, id int64) (*SettlementResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Advance()
	return e.settleLocked(ctx, account, id, now)
}

// SettleAllReady sweeps the caller's ACTIVE predictions and settles
// every one whose horizon has elapsed. Ineligible predictions are
// counted, not failed; a price failure on one prediction does not
// abort the rest.
func (e *Engine) SettleAllReady(ctx context.Context, account string) (*SettleAllResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Advance()

	result := &SettleAllResult{}
	for _, p := range e.registry.ForOwner(account) {
		if p.Status != domain.StatusActive {
			continue
		}
		if e.clock.Elapsed(p.CreatedAt, now) < p.Horizon {
			result.Skipped++
			continue
		}
		res, err := e.settleLocked(ctx, account, p.ID, now)
		if err != nil {
			result.Failed = append(result.Failed, SettleFailure{ID: p.ID, Error: err.Error()})
			continue
		}
		result.Settled = append(result.Settled, *res)
	}
	return result, nil
}

// settleLocked runs the resolution algorithm for one prediction.
// Caller holds the mutex. The price fetch happens before any state
// change: a fetch failure leaves the prediction ACTIVE and retryable.
func (e *Engine) settleLocked(ctx context.Context, account string, id int64, now domain.Instant) (*SettlementResult, error) {
	p, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Owner != account {
		return nil, fmt.Errorf("prediction #%d: %w", id, domain.ErrNotOwner)
	}
	if p.Status != domain.StatusActive {
		return nil, &domain.AlreadySettledError{Status: p.Status}
	}
	if elapsed := e.clock.Elapsed(p.CreatedAt, now); elapsed < p.Horizon {
		return nil, &domain.TooEarlyError{Remaining: p.Horizon - elapsed}
	}

	quote, err := e.fetchPrice(ctx, p.Symbol)
	if err != nil {
		return nil, err
	}

	// Strict > keeps the historical tie policy: an unchanged price has
	// not risen, so a DOWN bet wins a tie and an UP bet loses it.
	priceRose := quote.PriceCents > p.EntryPrice
	won := priceRose == (p.Direction == domain.DirectionUp)

	var payout int64
	var stats domain.PlayerStats
	if won {
		// Multiply before dividing: floor(stake*18/10).
		payout = p.Stake * e.cfg.PayoutNum / e.cfg.PayoutDen
		if err := e.ledger.Credit(p.Owner, payout); err != nil {
			return nil, err
		}
		if err := e.registry.Transition(id, domain.StatusWon); err != nil {
			return nil, err
		}
		stats = e.stats.RecordWin(p.Owner, payout, p.Stake)
	} else {
		if err := e.registry.Transition(id, domain.StatusLost); err != nil {
			return nil, err
		}
		stats = e.stats.RecordLoss(p.Owner, p.Stake)
	}

	balance := e.ledger.Balance(p.Owner)
	status := domain.StatusLost
	if won {
		status = domain.StatusWon
	}
	e.persistSettlement(ctx, id, status, p.Owner, balance, stats, now)

	slog.Info("prediction settled",
		"id", id,
		"owner", p.Owner,
		"outcome", status,
		"entry_price", p.EntryPrice,
		"exit_price", quote.PriceCents,
		"payout", payout,
		"source", quote.Source,
	)

	return &SettlementResult{
		ID:          id,
		Outcome:     status,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   quote.PriceCents,
		PriceSource: quote.Source,
		Payout:      payout,
		NewBalance:  balance,
	}, nil
}

// fetchPrice queries the oracle and rejects degenerate quotes.
func (e *Engine) fetchPrice(ctx context.Context, symbol string) (domain.Quote, error) {
	quote, err := e.oracle.Fetch(ctx, symbol)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("fetch %s: %w: %v", symbol, domain.ErrPriceUnavailable, err)
	}
	if !quote.Valid() {
		return domain.Quote{}, fmt.Errorf("fetch %s: price %d: %w", symbol, quote.PriceCents, domain.ErrPriceUnavailable)
	}
	return quote, nil
}

// PredictionDetails returns the full read-side view of one record.
func (e *Engine) PredictionDetails(id int64) (*PredictionDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detailsLocked(id)
}

func (e *Engine) detailsLocked(id int64) (*PredictionDetails, error) {
	p, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	d := &PredictionDetails{Prediction: p}
	if p.Status == domain.StatusActive {
		elapsed := e.clock.Elapsed(p.CreatedAt, e.clock.Now())
		d.RemainingTicks = p.Remaining(elapsed)
		d.Settleable = d.RemainingTicks == 0
	}
	return d, nil
}

// UserPredictions buckets the account's predictions by status.
func (e *Engine) UserPredictions(account string) domain.PredictionCounts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userPredictionsLocked(account)
}

func (e *Engine) userPredictionsLocked(account string) domain.PredictionCounts {
	var counts domain.PredictionCounts
	for _, p := range e.registry.ForOwner(account) {
		counts.Total++
		switch p.Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusWon:
			counts.Won++
		case domain.StatusLost:
			counts.Lost++
		}
	}
	return counts
}

// ActivePredictions lists the account's ACTIVE predictions with their
// remaining ticks, in id order.
func (e *Engine) ActivePredictions(account string) []PredictionDetails {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []PredictionDetails
	now := e.clock.Now()
	for _, p := range e.registry.ForOwner(account) {
		if p.Status != domain.StatusActive {
			continue
		}
		remaining := p.Remaining(e.clock.Elapsed(p.CreatedAt, now))
		out = append(out, PredictionDetails{
			Prediction:     p,
			RemainingTicks: remaining,
			Settleable:     remaining == 0,
		})
	}
	return out
}

// UserStats combines the account's counters, buckets and balance,
// read in one critical section.
func (e *Engine) UserStats(account string) UserStatsResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stats.Get(account)
	return UserStatsResult{
		Account: account,
		Counts:  e.userPredictionsLocked(account),
		Wins:    st.Wins,
		Losses:  st.Losses,
		WinRate: st.WinRate(),
		Profit:  st.Profit,
		Balance: e.ledger.Balance(account),
	}
}

// Leaderboard returns the top players ranked by the given key.
func (e *Engine) Leaderboard(sortKey string) ([]domain.LeaderboardEntry, error) {
	key, err := ParseSortKey(sortKey)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Leaderboard(key), nil
}

// GameStats returns the global totals.
func (e *Engine) GameStats() domain.GameStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := domain.GameStats{
		TotalInPool:  e.ledger.TotalInPool(),
		ClockInstant: e.clock.Now(),
	}
	players := make(map[string]struct{})
	for _, p := range e.registry.All() {
		stats.TotalPredictions++
		players[p.Owner] = struct{}{}
		if p.Status == domain.StatusActive {
			stats.ActivePredictions++
			stats.TotalActiveStakes += p.Stake
		}
	}
	stats.TotalPlayers = int64(len(players))
	return stats
}

// AdvanceClock manually moves the logical clock one tick forward.
// Meaningful for the counter strategy; a no-op for the wall clock.
func (e *Engine) AdvanceClock(ctx context.Context) domain.Instant {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Advance()
	if e.store != nil {
		if err := e.store.SaveClock(context.WithoutCancel(ctx), now); err != nil {
			slog.Warn("persist clock failed", "err", err)
		}
	}
	return now
}

// CurrentInstant exposes the clock reading.
func (e *Engine) CurrentInstant() domain.Instant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Now()
}

// CurrentPrice is a read-only quote passthrough with the source tag.
func (e *Engine) CurrentPrice(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Quote{}, domain.ErrInvalidSymbol
	}
	return e.fetchPrice(ctx, symbol)
}

// --- persistence helpers ---
//
// The in-memory state is authoritative within an operation; a journal
// write failure is logged and the operation still succeeds. A crash
// between commit and journal loses at most the current operation.
//
// Journal writes are detached from the caller's context: once the
// in-memory commit happened, a client disconnect or request timeout
// must not drop the write.

func (e *Engine) persistDeposit(ctx context.Context, account string, balance int64, now domain.Instant) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveDeposit(context.WithoutCancel(ctx), account, balance, now); err != nil {
		slog.Warn("persist deposit failed", "account", account, "err", err)
	}
}

func (e *Engine) persistPlacement(ctx context.Context, p domain.Prediction, balance int64, now domain.Instant) {
	if e.store == nil {
		return
	}
	if err := e.store.SavePlacement(context.WithoutCancel(ctx), p, balance, e.registry.NextID(), now); err != nil {
		slog.Warn("persist placement failed", "id", p.ID, "err", err)
	}
}

func (e *Engine) persistSettlement(ctx context.Context, id int64, status domain.Status, owner string, balance int64, stats domain.PlayerStats, now domain.Instant) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveSettlement(context.WithoutCancel(ctx), id, status, balance, stats, now); err != nil {
		slog.Warn("persist settlement failed", "id", id, "owner", owner, "err", err)
	}
}
