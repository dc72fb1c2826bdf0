package engine

import (
	"testing"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_DepositAndBalance(t *testing.T) {
	l := NewLedger()

	assert.Equal(t, int64(0), l.Balance("alice"), "unknown accounts read as 0")

	balance, err := l.Deposit("alice", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	balance, err = l.Deposit("alice", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)
}

func TestLedger_DepositRejectsNonPositive(t *testing.T) {
	l := NewLedger()

	_, err := l.Deposit("alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = l.Deposit("alice", -10)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.Equal(t, int64(0), l.Balance("alice"), "failed deposit must not create the account")
}

func TestLedger_DebitInsufficient(t *testing.T) {
	l := NewLedger()
	_, err := l.Deposit("alice", 100)
	require.NoError(t, err)

	err = l.Debit("alice", 101)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Have)
	assert.Equal(t, int64(101), insufficient.Need)

	assert.Equal(t, int64(100), l.Balance("alice"), "failed debit must not touch the balance")
}

func TestLedger_DebitCredit(t *testing.T) {
	l := NewLedger()
	_, err := l.Deposit("alice", 1000)
	require.NoError(t, err)

	require.NoError(t, l.Debit("alice", 400))
	assert.Equal(t, int64(600), l.Balance("alice"))

	require.NoError(t, l.Credit("alice", 180))
	assert.Equal(t, int64(780), l.Balance("alice"))

	// Draining to exactly zero is allowed; below zero never is.
	require.NoError(t, l.Debit("alice", 780))
	assert.Equal(t, int64(0), l.Balance("alice"))
	assert.ErrorIs(t, l.Debit("alice", 1), domain.ErrInsufficientBalance)
}

func TestLedger_TotalInPool(t *testing.T) {
	l := NewLedger()
	_, err := l.Deposit("alice", 300)
	require.NoError(t, err)
	_, err = l.Deposit("bob", 700)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), l.TotalInPool())
}
