package engine

import (
	"fmt"
	"sort"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// SortKey selects how the leaderboard is ranked.
type SortKey string

const (
	SortByWins   SortKey = "wins"
	SortByProfit SortKey = "profit"

	leaderboardSize = 10
)

// ParseSortKey validates a caller-supplied sort key, defaulting to wins.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", string(SortByWins):
		return SortByWins, nil
	case string(SortByProfit):
		return SortByProfit, nil
	default:
		return "", fmt.Errorf("sort key must be %q or %q, got %q", SortByWins, SortByProfit, s)
	}
}

// Stats maintains per-owner win/profit counters. It is written only by
// the settlement engine and read by the leaderboard queries; it is
// derived state, never authoritative.
type Stats struct {
	byOwner map[string]*domain.PlayerStats
	order   []string // first-settlement order, stable tie-break
}

// NewStats creates empty counters.
func NewStats() *Stats {
	return &Stats{byOwner: make(map[string]*domain.PlayerStats)}
}

func (s *Stats) entry(owner string) *domain.PlayerStats {
	if e, ok := s.byOwner[owner]; ok {
		return e
	}
	e := &domain.PlayerStats{Address: owner, Seq: int64(len(s.order))}
	s.byOwner[owner] = e
	s.order = append(s.order, owner)
	return e
}

// RecordWin bumps the owner's win counter and adds payout-stake to the
// signed profit total.
func (s *Stats) RecordWin(owner string, payout, stake int64) domain.PlayerStats {
	e := s.entry(owner)
	e.Wins++
	e.Profit += payout - stake
	return *e
}

// RecordLoss bumps the loss counter and subtracts the stake from profit.
func (s *Stats) RecordLoss(owner string, stake int64) domain.PlayerStats {
	e := s.entry(owner)
	e.Losses++
	e.Profit -= stake
	return *e
}

// Get returns the owner's counters, zero-valued if nothing settled yet.
func (s *Stats) Get(owner string) domain.PlayerStats {
	if e, ok := s.byOwner[owner]; ok {
		return *e
	}
	return domain.PlayerStats{Address: owner}
}

// Leaderboard ranks owners descending by the sort key, ties broken by
// first-settlement order, truncated to the top 10.
func (s *Stats) Leaderboard(key SortKey) []domain.LeaderboardEntry {
	entries := make([]domain.PlayerStats, 0, len(s.order))
	for _, owner := range s.order {
		entries = append(entries, *s.byOwner[owner])
	}

	// Input is already in Seq order, so a stable sort keeps the
	// insertion-order tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		if key == SortByProfit {
			return entries[i].Profit > entries[j].Profit
		}
		return entries[i].Wins > entries[j].Wins
	})

	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}

	out := make([]domain.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.LeaderboardEntry{
			Rank:    i + 1,
			Address: e.Address,
			Wins:    e.Wins,
			Profit:  e.Profit,
		}
	}
	return out
}

// restore replaces the counters, used when loading persisted state.
// Entries are re-ordered by their persisted Seq.
func (s *Stats) restore(stats map[string]domain.PlayerStats) {
	s.byOwner = make(map[string]*domain.PlayerStats, len(stats))
	s.order = s.order[:0]
	for _, e := range stats {
		e := e
		s.byOwner[e.Address] = &e
		s.order = append(s.order, e.Address)
	}
	sort.Slice(s.order, func(i, j int) bool {
		return s.byOwner[s.order[i]].Seq < s.byOwner[s.order[j]].Seq
	})
}
