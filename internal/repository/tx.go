package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/internal/domain"
)

// TxManagerImpl implements domain.TxManager over a pgx connection pool.
type TxManagerImpl struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new TxManager
func NewTxManager(pool *pgxpool.Pool) domain.TxManager {
	return &TxManagerImpl{pool: pool}
}

// WithinTx begins a transaction, hands fn repositories bound to it, and
// commits when fn returns nil. Any error rolls the whole transaction back,
// so an account update and its trade record never land separately.
func (m *TxManagerImpl) WithinTx(ctx context.Context, fn func(accounts domain.AccountRepository, trades domain.TradeRepository) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewAccountRepository(tx), NewTradeRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
