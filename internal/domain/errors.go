package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for order and ledger failures. Every one of these means
// "no mutation happened": the caller can correct the request and retry.
var (
	ErrInvalidRequest       = errors.New("invalid trade request")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientBalance  = errors.New("insufficient paper trading balance")
	ErrInsufficientHoldings = errors.New("insufficient holdings to sell")
	ErrAccountNotFound      = errors.New("account not found")
	ErrTradeNotFound        = errors.New("trade not found")
	ErrOrderNotOpen         = errors.New("order is not open")
)

// RiskRejectedError reports a pre-trade risk constraint breach. Reason
// names the breached limit and its dollar threshold.
type RiskRejectedError struct {
	Reason string
}

func (e *RiskRejectedError) Error() string {
	return e.Reason
}

// StorageFailureError wraps a persistence failure. The order submission it
// belongs to was rolled back as a whole; neither the account nor the trade
// ledger was partially updated.
type StorageFailureError struct {
	Op  string
	Err error
}

func (e *StorageFailureError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageFailureError) Unwrap() error {
	return e.Err
}
