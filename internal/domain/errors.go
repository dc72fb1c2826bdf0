package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's operation surface. Every mutating
// operation recovers at this boundary: the caller gets a kind it can
// match with errors.Is, state is never partially applied.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDirection    = errors.New("direction must be UP or DOWN")
	ErrInvalidSymbol       = errors.New("symbol is required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrPredictionNotFound  = errors.New("prediction not found")
	ErrNotOwner            = errors.New("not your prediction")
	ErrAlreadySettled      = errors.New("prediction already settled")
	ErrTooEarly            = errors.New("too early to settle")
)

// InvalidDirectionError carries the rejected input.
type InvalidDirectionError struct {
	Input string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("direction must be UP or DOWN, got %q", e.Input)
}

func (e *InvalidDirectionError) Is(target error) bool { return target == ErrInvalidDirection }

// InsufficientBalanceError reports required vs. available funds.
type InsufficientBalanceError struct {
	Have int64
	Need int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Have, e.Need)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// TooEarlyError reports how many ticks are still missing.
type TooEarlyError struct {
	Remaining int64
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("too early to settle: %d ticks remaining", e.Remaining)
}

func (e *TooEarlyError) Is(target error) bool { return target == ErrTooEarly }

// AlreadySettledError carries the terminal status the prediction
// already reached.
type AlreadySettledError struct {
	Status Status
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("prediction already settled: %s", e.Status)
}

func (e *AlreadySettledError) Is(target error) bool { return target == ErrAlreadySettled }
