package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
	"papertrade/pkg/logger"
)

// LimitOrderExecutor executes a claimed OPEN limit order through the
// engine's serialized, transactional path.
type LimitOrderExecutor interface {
	FillLimitOrder(ctx context.Context, tradeID uuid.UUID) error
}

// PriceSource supplies reference prices for a set of symbols.
type PriceSource interface {
	GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// FillService is the limit-order fill poller. The engine itself never
// fills pending orders; this service compares OPEN limit orders against
// reference prices on a schedule chosen purely by configuration and hands
// marketable ones to the executor.
type FillService struct {
	trades   domain.TradeRepository
	prices   PriceSource
	executor LimitOrderExecutor
}

// NewFillService creates a new FillService
func NewFillService(trades domain.TradeRepository, prices PriceSource, executor LimitOrderExecutor) *FillService {
	return &FillService{
		trades:   trades,
		prices:   prices,
		executor: executor,
	}
}

// CheckOpenOrders fetches all OPEN limit orders, bulk-fetches prices for
// their symbols, and fills every marketable order: a BUY fills when the
// reference price has dropped to the limit or below, a SELL when it has
// risen to the limit or above.
func (s *FillService) CheckOpenOrders(ctx context.Context) error {
	orders, err := s.trades.GetOpenLimitOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to get open limit orders: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	symbolSet := make(map[string]bool)
	for _, order := range orders {
		symbolSet[order.Symbol] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}

	prices, err := s.prices.GetPrices(ctx, symbols)
	if err != nil && len(prices) == 0 {
		// Nothing to work with; try again on the next tick.
		logger.Warnf("Fill poller: failed to fetch prices: %v", err)
		return nil
	}

	filled := 0
	for _, order := range orders {
		current, ok := prices[order.Symbol]
		if !ok {
			continue
		}
		if !marketable(order, current) {
			continue
		}

		if err := s.executor.FillLimitOrder(ctx, order.ID); err != nil {
			if errors.Is(err, domain.ErrOrderNotOpen) {
				continue // raced with a cancel or another fill
			}
			logger.Warnf("Fill poller: failed to fill %s: %v", order.ID, err)
			continue
		}
		filled++
	}

	if filled > 0 {
		logger.Infof("[OK] Fill poller: filled %d limit order(s)", filled)
	}
	return nil
}

// marketable reports whether the reference price has crossed the order's
// limit price.
func marketable(order *domain.TradeRecord, current decimal.Decimal) bool {
	if order.Action == domain.ActionBuy {
		return current.LessThanOrEqual(order.Price)
	}
	return current.GreaterThanOrEqual(order.Price)
}
