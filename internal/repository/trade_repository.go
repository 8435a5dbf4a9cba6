package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db DB) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

const tradeColumns = `
	id, account_id, type, action, symbol, quantity, price, total,
	timestamp, order_kind, limit_price, stop_loss_price,
	take_profit_price, status, risk_stop_loss, risk_level, ai_confidence
`

// Save appends a new trade record
func (r *TradeRepositoryImpl) Save(ctx context.Context, trade *domain.TradeRecord) error {
	query := `
		INSERT INTO trades (` + tradeColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	_, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.AccountID,
		trade.Type,
		trade.Action,
		trade.Symbol,
		trade.Quantity,
		trade.Price,
		trade.Total,
		trade.Timestamp,
		trade.OrderKind,
		nullDecimal(trade.LimitPrice),
		nullDecimal(trade.StopLossPrice),
		nullDecimal(trade.TakeProfitPrice),
		trade.Status,
		trade.Risk.StopLoss,
		trade.Risk.RiskLevel,
		trade.Risk.Confidence,
	)

	if err != nil {
		return fmt.Errorf("failed to save trade record: %w", err)
	}

	return nil
}

// GetByID retrieves a trade record by ID
func (r *TradeRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	trade, err := scanTrade(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// ListByAccount retrieves an account's trades, most recent first
func (r *TradeRepositoryImpl) ListByAccount(ctx context.Context, accountID uuid.UUID, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Query(ctx, query, accountID, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by account: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// GetOpenLimitOrders retrieves all OPEN limit orders across accounts
func (r *TradeRepositoryImpl) GetOpenLimitOrders(ctx context.Context) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = 'OPEN' AND order_kind = 'LIMIT'
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open limit orders: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// TransitionStatus moves a record from one status to another. The guard in
// the WHERE clause makes concurrent transitions race-safe: only one caller
// observes true.
func (r *TradeRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE trades SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition trade status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SumFilledTotals sums the totals of FILLED records with the given action
// for an account since the given time
func (r *TradeRepositoryImpl) SumFilledTotals(ctx context.Context, accountID uuid.UUID, action string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total), 0)
		FROM trades
		WHERE account_id = $1
		  AND action = $2
		  AND status = 'FILLED'
		  AND timestamp >= $3
	`

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, accountID, action, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum filled totals: %w", err)
	}
	return sum, nil
}

func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	trade := &domain.TradeRecord{}
	var limitPrice, stopLossPrice, takeProfitPrice decimal.NullDecimal

	err := row.Scan(
		&trade.ID,
		&trade.AccountID,
		&trade.Type,
		&trade.Action,
		&trade.Symbol,
		&trade.Quantity,
		&trade.Price,
		&trade.Total,
		&trade.Timestamp,
		&trade.OrderKind,
		&limitPrice,
		&stopLossPrice,
		&takeProfitPrice,
		&trade.Status,
		&trade.Risk.StopLoss,
		&trade.Risk.RiskLevel,
		&trade.Risk.Confidence,
	)
	if err != nil {
		return nil, err
	}

	trade.LimitPrice = fromNullDecimal(limitPrice)
	trade.StopLossPrice = fromNullDecimal(stopLossPrice)
	trade.TakeProfitPrice = fromNullDecimal(takeProfitPrice)

	return trade, nil
}

func collectTrades(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
