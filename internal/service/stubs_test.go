package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// stubTradeRepo implements domain.TradeRepository with pluggable behavior;
// unconfigured methods return zero values.
type stubTradeRepo struct {
	openLimitOrders []*domain.TradeRecord
	openLimitErr    error
	filledTotals    map[string]decimal.Decimal // keyed by action
	filledErr       error
}

func (s *stubTradeRepo) Save(context.Context, *domain.TradeRecord) error { return nil }

func (s *stubTradeRepo) GetByID(context.Context, uuid.UUID) (*domain.TradeRecord, error) {
	return nil, domain.ErrTradeNotFound
}

func (s *stubTradeRepo) ListByAccount(context.Context, uuid.UUID, domain.TradeFilter) ([]*domain.TradeRecord, error) {
	return nil, nil
}

func (s *stubTradeRepo) GetOpenLimitOrders(context.Context) ([]*domain.TradeRecord, error) {
	return s.openLimitOrders, s.openLimitErr
}

func (s *stubTradeRepo) TransitionStatus(context.Context, uuid.UUID, string, string) (bool, error) {
	return false, nil
}

func (s *stubTradeRepo) SumFilledTotals(_ context.Context, _ uuid.UUID, action string, _ time.Time) (decimal.Decimal, error) {
	if s.filledErr != nil {
		return decimal.Zero, s.filledErr
	}
	return s.filledTotals[action], nil
}

// stubAccountRepo implements domain.AccountRepository over a fixed list.
type stubAccountRepo struct {
	accounts []*domain.Account
}

func (s *stubAccountRepo) Create(context.Context, *domain.Account) error { return nil }

func (s *stubAccountRepo) GetByID(context.Context, uuid.UUID) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByUsername(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountRepo) UpdateSnapshot(context.Context, *domain.Account) error { return nil }

func (s *stubAccountRepo) GetAll(context.Context) ([]*domain.Account, error) {
	return s.accounts, nil
}

func (s *stubAccountRepo) Delete(context.Context, uuid.UUID) error { return nil }
