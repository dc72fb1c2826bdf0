package engine

import (
	"fmt"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// Ledger owns the account → balance mapping. Balances are integers in
// minor units and can never go negative: Debit checks before it
// subtracts, and nothing else writes the map.
type Ledger struct {
	balances map[string]int64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]int64)}
}

// Balance returns the available balance, 0 for unknown accounts.
// Reading does not create the account.
func (l *Ledger) Balance(account string) int64 {
	return l.balances[account]
}

// Deposit credits amount to the account, creating it on first use.
// Non-positive amounts are rejected.
func (l *Ledger) Deposit(account string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("deposit %d: %w", amount, domain.ErrInvalidAmount)
	}
	l.balances[account] += amount
	return l.balances[account], nil
}

// Debit subtracts amount from the account's balance. Fails without
// touching the balance when funds are insufficient.
func (l *Ledger) Debit(account string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, domain.ErrInvalidAmount)
	}
	have := l.balances[account]
	if have < amount {
		return &domain.InsufficientBalanceError{Have: have, Need: amount}
	}
	l.balances[account] = have - amount
	return nil
}

// Credit adds a non-negative amount to the account's balance.
func (l *Ledger) Credit(account string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, domain.ErrInvalidAmount)
	}
	l.balances[account] += amount
	return nil
}

// TotalInPool sums every account balance.
func (l *Ledger) TotalInPool() int64 {
	var total int64
	for _, b := range l.balances {
		total += b
	}
	return total
}

// Accounts returns a copy of the balance map.
func (l *Ledger) Accounts() map[string]int64 {
	out := make(map[string]int64, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}

// restore replaces the ledger contents, used when loading persisted state.
func (l *Ledger) restore(accounts map[string]int64) {
	l.balances = make(map[string]int64, len(accounts))
	for k, v := range accounts {
		l.balances[k] = v
	}
}
