package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// memStore is an in-memory stand-in for the database, shared by the fake
// repositories and the fake transaction manager below.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	trades   map[uuid.UUID]*domain.TradeRecord
	order    []uuid.UUID // trade IDs in insertion order

	// saveErr, when set, makes the next trade Save fail.
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]*domain.Account),
		trades:   make(map[uuid.UUID]*domain.TradeRecord),
	}
}

func (s *memStore) seedAccount(acc *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = acc.Clone()
}

type memAccounts struct{ store *memStore }

func (r *memAccounts) Create(_ context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts[account.ID] = account.Clone()
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (r *memAccounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, acc := range r.store.accounts {
		if acc.Username == username {
			return acc.Clone(), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccounts) UpdateSnapshot(_ context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	r.store.accounts[account.ID] = account.Clone()
	return nil
}

func (r *memAccounts) GetAll(_ context.Context) ([]*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		out = append(out, acc.Clone())
	}
	return out, nil
}

func (r *memAccounts) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.accounts, id)
	for tid, tr := range r.store.trades {
		if tr.AccountID == id {
			delete(r.store.trades, tid)
		}
	}
	return nil
}

type memTrades struct{ store *memStore }

func copyTrade(t *domain.TradeRecord) *domain.TradeRecord {
	cp := *t
	return &cp
}

func (r *memTrades) Save(_ context.Context, trade *domain.TradeRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.saveErr != nil {
		return r.store.saveErr
	}
	r.store.trades[trade.ID] = copyTrade(trade)
	r.store.order = append(r.store.order, trade.ID)
	return nil
}

func (r *memTrades) GetByID(_ context.Context, id uuid.UUID) (*domain.TradeRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tr, ok := r.store.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return copyTrade(tr), nil
}

func (r *memTrades) ListByAccount(_ context.Context, accountID uuid.UUID, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.TradeRecord
	for _, id := range r.store.order {
		tr, ok := r.store.trades[id]
		if !ok || tr.AccountID != accountID {
			continue
		}
		if !filter.From.IsZero() && tr.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tr.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, copyTrade(tr))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *memTrades) GetOpenLimitOrders(_ context.Context) ([]*domain.TradeRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.TradeRecord
	for _, id := range r.store.order {
		tr := r.store.trades[id]
		if tr != nil && tr.OrderKind == domain.OrderKindLimit && tr.Status == domain.StatusOpen {
			out = append(out, copyTrade(tr))
		}
	}
	return out, nil
}

func (r *memTrades) TransitionStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tr, ok := r.store.trades[id]
	if !ok || tr.Status != from {
		return false, nil
	}
	tr.Status = to
	return true, nil
}

func (r *memTrades) SumFilledTotals(_ context.Context, accountID uuid.UUID, action string, since time.Time) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sum := decimal.Zero
	for _, tr := range r.store.trades {
		if tr.AccountID == accountID && tr.Action == action &&
			tr.Status == domain.StatusFilled && !tr.Timestamp.Before(since) {
			sum = sum.Add(tr.Total)
		}
	}
	return sum, nil
}

// memTx snapshots the store before running fn and restores the snapshot if
// fn fails, mimicking a rolled-back database transaction.
type memTx struct{ store *memStore }

func (m *memTx) WithinTx(_ context.Context, fn func(domain.AccountRepository, domain.TradeRepository) error) error {
	m.store.mu.Lock()
	accounts := make(map[uuid.UUID]*domain.Account, len(m.store.accounts))
	for id, acc := range m.store.accounts {
		accounts[id] = acc.Clone()
	}
	trades := make(map[uuid.UUID]*domain.TradeRecord, len(m.store.trades))
	for id, tr := range m.store.trades {
		trades[id] = copyTrade(tr)
	}
	order := append([]uuid.UUID(nil), m.store.order...)
	m.store.mu.Unlock()

	if err := fn(&memAccounts{m.store}, &memTrades{m.store}); err != nil {
		m.store.mu.Lock()
		m.store.accounts = accounts
		m.store.trades = trades
		m.store.order = order
		m.store.mu.Unlock()
		return err
	}
	return nil
}
