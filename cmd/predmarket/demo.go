package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/predmarket/internal/adapters/notify"
	"github.com/alejandrodnm/predmarket/internal/engine"
)

// runDemo plays a short scripted game against whatever clock and
// oracle the config selected, printing every step. With the defaults
// (counter clock, mock oracle) the run is fully reproducible.
func runDemo(ctx context.Context, eng *engine.Engine, console *notify.Console) {
	players := []string{"alice", "bob"}

	for _, p := range players {
		res, err := eng.Deposit(ctx, p, 1000)
		if err != nil {
			slog.Error("demo: deposit failed", "player", p, "err", err)
			return
		}
		console.PrintDeposit(res)
	}

	bets := []struct {
		player    string
		symbol    string
		direction string
		stake     int64
	}{
		{"alice", "BTC", "UP", 100},
		{"bob", "BTC", "DOWN", 150},
		{"alice", "ETH", "DOWN", 50},
	}

	for _, b := range bets {
		res, err := eng.PlacePrediction(ctx, b.player, b.symbol, b.direction, b.stake, 60)
		if err != nil {
			slog.Error("demo: placement failed", "player", b.player, "err", err)
			continue
		}
		console.PrintPlacement(res)
	}

	// Six ticks cover the 60 s horizon on the counter clock.
	for range [6]struct{}{} {
		eng.AdvanceClock(ctx)
	}

	for _, p := range players {
		res, err := eng.SettleAllReady(ctx, p)
		if err != nil {
			slog.Error("demo: settle-all failed", "player", p, "err", err)
			continue
		}
		console.PrintSettleAll(res)
	}

	for _, p := range players {
		console.PrintUserStats(eng.UserStats(p))
	}

	entries, err := eng.Leaderboard("wins")
	if err == nil {
		console.PrintLeaderboard(engine.SortByWins, entries)
	}
	console.PrintGameStats(eng.GameStats())
}
