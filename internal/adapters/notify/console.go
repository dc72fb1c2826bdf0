// Package notify renders game state for humans on the terminal.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/engine"
	"github.com/olekukonko/tablewriter"
)

// Console prints leaderboards, stats and operation outcomes.
type Console struct {
	out io.Writer
}

// NewConsole creates a console printer writing to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a console printer for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintDeposit prints a deposit confirmation.
func (c *Console) PrintDeposit(r *engine.DepositResult) {
	fmt.Fprintf(c.out, "deposited %d → balance %d (%s)\n", r.Amount, r.NewBalance, r.Account)
}

// PrintPlacement prints a one-line summary of a new prediction.
func (c *Console) PrintPlacement(r *engine.PlacementResult) {
	fmt.Fprintf(c.out, "prediction #%d: %s on %s @ $%s | stake %d | expires in %d ticks | source %s | balance %d\n",
		r.ID, r.Direction, r.Symbol, formatCents(r.EntryPrice),
		r.Stake, r.HorizonTicks, r.PriceSource, r.NewBalance)
}

// PrintSettlement prints the outcome of one settlement.
func (c *Console) PrintSettlement(r *engine.SettlementResult) {
	fmt.Fprintf(c.out, "prediction #%d: %s | entry $%s → exit $%s | payout %d | balance %d | source %s\n",
		r.ID, r.Outcome, formatCents(r.EntryPrice), formatCents(r.ExitPrice),
		r.Payout, r.NewBalance, r.PriceSource)
}

// PrintSettleAll summarizes a settle-all sweep.
func (c *Console) PrintSettleAll(r *engine.SettleAllResult) {
	fmt.Fprintf(c.out, "settled %d | skipped %d | failed %d\n",
		len(r.Settled), r.Skipped, len(r.Failed))
	for _, s := range r.Settled {
		c.PrintSettlement(&s)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(c.out, "  !! #%d: %s\n", f.ID, f.Error)
	}
}

// PrintLeaderboard renders the ranked table.
func (c *Console) PrintLeaderboard(key engine.SortKey, entries []domain.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no winners yet")
		return
	}

	fmt.Fprintf(c.out, "\n=== LEADERBOARD (by %s) ===\n", key)
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Player", "Wins", "Profit")
	for _, e := range entries {
		table.Append(
			fmt.Sprintf("%d", e.Rank),
			shortAddr(e.Address),
			fmt.Sprintf("%d", e.Wins),
			fmt.Sprintf("%+d", e.Profit),
		)
	}
	table.Render()
}

// PrintUserStats renders one player's aggregate numbers.
func (c *Console) PrintUserStats(r engine.UserStatsResult) {
	fmt.Fprintf(c.out, "%s: balance %d | predictions %d (active %d, won %d, lost %d) | win rate %.0f%% | profit %+d\n",
		shortAddr(r.Account), r.Balance, r.Counts.Total, r.Counts.Active,
		r.Counts.Won, r.Counts.Lost, r.WinRate*100, r.Profit)
}

// PrintGameStats renders the global totals.
func (c *Console) PrintGameStats(s domain.GameStats) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Predictions", "Active", "Players", "Pool", "Staked", "Clock")
	table.Append(
		fmt.Sprintf("%d", s.TotalPredictions),
		fmt.Sprintf("%d", s.ActivePredictions),
		fmt.Sprintf("%d", s.TotalPlayers),
		fmt.Sprintf("%d", s.TotalInPool),
		fmt.Sprintf("%d", s.TotalActiveStakes),
		fmt.Sprintf("%d", s.ClockInstant),
	)
	table.Render()
}

// formatCents renders minor units as a dollar amount.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// shortAddr truncates long account handles for table cells.
func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:10] + "..."
}
