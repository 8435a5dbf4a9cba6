package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data operations.
// Accounts are persisted as whole snapshots; there is no partial update.
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByUsername retrieves an account by username
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// UpdateSnapshot persists the account's balance, invested capital and
	// holdings exactly as written on the entity
	UpdateSnapshot(ctx context.Context, account *Account) error

	// GetAll retrieves all accounts
	GetAll(ctx context.Context) ([]*Account, error)

	// Delete removes an account; its trade records cascade with it
	Delete(ctx context.Context, id uuid.UUID) error
}

// TradeRepository defines the interface for the append-only trade ledger.
type TradeRepository interface {
	// Save appends a new trade record
	Save(ctx context.Context, trade *TradeRecord) error

	// GetByID retrieves a trade record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*TradeRecord, error)

	// ListByAccount retrieves an account's trades, most recent first
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter TradeFilter) ([]*TradeRecord, error)

	// GetOpenLimitOrders retrieves all OPEN limit orders across accounts
	GetOpenLimitOrders(ctx context.Context) ([]*TradeRecord, error)

	// TransitionStatus moves a record from one status to another. It
	// reports false when the record was not in the expected status, so a
	// concurrent transition wins cleanly.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)

	// SumFilledTotals sums the totals of FILLED records with the given
	// action for an account since the given time
	SumFilledTotals(ctx context.Context, accountID uuid.UUID, action string, since time.Time) (decimal.Decimal, error)
}

// TxManager runs a function with repositories bound to a single storage
// transaction, so an account mutation and its trade record commit or roll
// back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(accounts AccountRepository, trades TradeRepository) error) error
}
