package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPaperBalance is the virtual cash every new account starts with.
var DefaultPaperBalance = decimal.NewFromInt(10000)

// Account represents a paper trading account. It owns the virtual cash
// balance and the per-symbol holdings; both are mutated only through the
// ledger methods below so the non-negative invariants hold.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	// Balance is the available virtual cash.
	Balance decimal.Decimal `json:"balance"`
	// InvestedCapital is the cumulative deposited amount, used as the
	// denominator for ROI reporting.
	InvestedCapital decimal.Decimal `json:"invested_capital"`
	// Holdings maps uppercase symbol to quantity. Entries are removed when
	// the quantity drops to zero; a missing symbol means zero held.
	Holdings  map[string]decimal.Decimal `json:"holdings"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewAccount creates an account with the default paper balance.
func NewAccount(username, passwordHash string) *Account {
	now := time.Now()
	return &Account{
		ID:              uuid.New(),
		Username:        username,
		PasswordHash:    passwordHash,
		Balance:         DefaultPaperBalance,
		InvestedCapital: DefaultPaperBalance,
		Holdings:        make(map[string]decimal.Decimal),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Holding returns the held quantity for symbol, treating a missing entry
// as zero.
func (a *Account) Holding(symbol string) decimal.Decimal {
	if qty, ok := a.Holdings[strings.ToUpper(symbol)]; ok {
		return qty
	}
	return decimal.Zero
}

// ApplyBuy debits quantity*price from the balance and increments the
// holding for symbol. The account is unchanged on error.
func (a *Account) ApplyBuy(symbol string, quantity, price decimal.Decimal) error {
	symbol = strings.ToUpper(symbol)
	total := quantity.Mul(price)
	if total.GreaterThan(a.Balance) {
		return ErrInsufficientBalance
	}

	a.Balance = a.Balance.Sub(total)
	if a.Holdings == nil {
		a.Holdings = make(map[string]decimal.Decimal)
	}
	a.Holdings[symbol] = a.Holding(symbol).Add(quantity)
	a.UpdatedAt = time.Now()
	return nil
}

// ApplySell credits quantity*price to the balance and decrements the
// holding for symbol. Entries that reach zero are removed so no
// zero-quantity holdings persist. The account is unchanged on error.
func (a *Account) ApplySell(symbol string, quantity, price decimal.Decimal) error {
	symbol = strings.ToUpper(symbol)
	held := a.Holding(symbol)
	if held.LessThan(quantity) {
		return ErrInsufficientHoldings
	}

	a.Balance = a.Balance.Add(quantity.Mul(price))
	remaining := held.Sub(quantity)
	if remaining.LessThanOrEqual(decimal.Zero) {
		delete(a.Holdings, symbol)
	} else {
		a.Holdings[symbol] = remaining
	}
	a.UpdatedAt = time.Now()
	return nil
}

// Deposit adds amount to both the balance and the invested-capital basis.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	a.InvestedCapital = a.InvestedCapital.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// ResetPaper restores the default balance and invested capital and clears
// all holdings. Irreversible; callers are expected to confirm first.
func (a *Account) ResetPaper() {
	a.Balance = DefaultPaperBalance
	a.InvestedCapital = DefaultPaperBalance
	a.Holdings = make(map[string]decimal.Decimal)
	a.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the account snapshot.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Holdings = make(map[string]decimal.Decimal, len(a.Holdings))
	for sym, qty := range a.Holdings {
		cp.Holdings[sym] = qty
	}
	return &cp
}
