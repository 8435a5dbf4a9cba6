package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

type stubPrices struct {
	prices map[string]decimal.Decimal
	err    error
}

func (s *stubPrices) GetPrices(context.Context, []string) (map[string]decimal.Decimal, error) {
	return s.prices, s.err
}

type stubExecutor struct {
	filled []uuid.UUID
	errs   map[uuid.UUID]error
}

func (s *stubExecutor) FillLimitOrder(_ context.Context, tradeID uuid.UUID) error {
	if err, ok := s.errs[tradeID]; ok {
		return err
	}
	s.filled = append(s.filled, tradeID)
	return nil
}

func openLimit(action, symbol string, limitPrice decimal.Decimal) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Type:      domain.TradeTypePaper,
		Action:    action,
		Symbol:    symbol,
		Quantity:  decimal.NewFromInt(1),
		Price:     limitPrice,
		Total:     limitPrice,
		Timestamp: time.Now(),
		OrderKind: domain.OrderKindLimit,
		Status:    domain.StatusOpen,
	}
}

func TestCheckOpenOrdersFillsMarketable(t *testing.T) {
	buyBelow := openLimit(domain.ActionBuy, "BTCUSDT", decimal.NewFromInt(45000)) // market 43000: fills
	buyAbove := openLimit(domain.ActionBuy, "BTCUSDT", decimal.NewFromInt(40000)) // market 43000: waits
	sellAbove := openLimit(domain.ActionSell, "ETHUSDT", decimal.NewFromInt(2200)) // market 2300: fills
	sellBelow := openLimit(domain.ActionSell, "ETHUSDT", decimal.NewFromInt(2400)) // market 2300: waits

	trades := &stubTradeRepo{openLimitOrders: []*domain.TradeRecord{buyBelow, buyAbove, sellAbove, sellBelow}}
	prices := &stubPrices{prices: map[string]decimal.Decimal{
		"BTCUSDT": decimal.NewFromInt(43000),
		"ETHUSDT": decimal.NewFromInt(2300),
	}}
	exec := &stubExecutor{}

	require.NoError(t, NewFillService(trades, prices, exec).CheckOpenOrders(context.Background()))
	assert.ElementsMatch(t, []uuid.UUID{buyBelow.ID, sellAbove.ID}, exec.filled)
}

func TestCheckOpenOrdersAtExactLimit(t *testing.T) {
	order := openLimit(domain.ActionBuy, "SOLUSDT", decimal.NewFromInt(90))
	trades := &stubTradeRepo{openLimitOrders: []*domain.TradeRecord{order}}
	prices := &stubPrices{prices: map[string]decimal.Decimal{"SOLUSDT": decimal.NewFromInt(90)}}
	exec := &stubExecutor{}

	require.NoError(t, NewFillService(trades, prices, exec).CheckOpenOrders(context.Background()))
	assert.Equal(t, []uuid.UUID{order.ID}, exec.filled, "touching the limit is marketable")
}

func TestCheckOpenOrdersSkipsRacedOrder(t *testing.T) {
	raced := openLimit(domain.ActionBuy, "BTCUSDT", decimal.NewFromInt(45000))
	other := openLimit(domain.ActionBuy, "BTCUSDT", decimal.NewFromInt(45000))

	trades := &stubTradeRepo{openLimitOrders: []*domain.TradeRecord{raced, other}}
	prices := &stubPrices{prices: map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(43000)}}
	exec := &stubExecutor{errs: map[uuid.UUID]error{raced.ID: domain.ErrOrderNotOpen}}

	// An order claimed elsewhere is skipped; the sweep continues.
	require.NoError(t, NewFillService(trades, prices, exec).CheckOpenOrders(context.Background()))
	assert.Equal(t, []uuid.UUID{other.ID}, exec.filled)
}

func TestCheckOpenOrdersPriceFetchFailure(t *testing.T) {
	order := openLimit(domain.ActionBuy, "BTCUSDT", decimal.NewFromInt(45000))
	trades := &stubTradeRepo{openLimitOrders: []*domain.TradeRecord{order}}
	prices := &stubPrices{err: errors.New("upstream down")}
	exec := &stubExecutor{}

	// No prices means no fills and no hard error; the next tick retries.
	require.NoError(t, NewFillService(trades, prices, exec).CheckOpenOrders(context.Background()))
	assert.Empty(t, exec.filled)
}

func TestCheckOpenOrdersNoOpenOrders(t *testing.T) {
	exec := &stubExecutor{}
	svc := NewFillService(&stubTradeRepo{}, &stubPrices{}, exec)

	require.NoError(t, svc.CheckOpenOrders(context.Background()))
	assert.Empty(t, exec.filled)
}
