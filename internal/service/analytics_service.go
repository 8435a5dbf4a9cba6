package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
	"papertrade/internal/utils"
)

// AnalyticsService derives trading statistics from the trade ledger. It
// implements the daily-loss figure the risk evaluator consumes.
type AnalyticsService struct {
	trades domain.TradeRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(trades domain.TradeRepository) *AnalyticsService {
	return &AnalyticsService{trades: trades}
}

// DailyLoss returns the account's net cash outflow across FILLED trades
// since UTC midnight, clamped at zero. The ledger stores no cost basis,
// so per-position realized P&L cannot be derived from it; net outflow is
// the proxy the risk gate consumes.
func (s *AnalyticsService) DailyLoss(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	since := utils.StartOfDayUTC()

	buys, err := s.trades.SumFilledTotals(ctx, accountID, domain.ActionBuy, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum daily buys: %w", err)
	}
	sells, err := s.trades.SumFilledTotals(ctx, accountID, domain.ActionSell, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum daily sells: %w", err)
	}

	loss := buys.Sub(sells)
	if loss.IsNegative() {
		return decimal.Zero, nil
	}
	return loss, nil
}
