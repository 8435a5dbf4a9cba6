// Package usecase contains the order processor: the state machine that
// validates trade intents, gates buys through the risk evaluator, mutates
// the account ledger and appends trade records.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
	"papertrade/internal/risk"
	"papertrade/pkg/logger"
)

// DailyLossProvider supplies the realized loss an account has accumulated
// today. The engine does not compute P&L itself; an analytics collaborator
// plugs in here.
type DailyLossProvider interface {
	DailyLoss(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// ZeroDailyLoss always reports zero realized loss. It is the default
// provider and matches the behavior of systems that gate on position size
// only.
type ZeroDailyLoss struct{}

// DailyLoss returns zero.
func (ZeroDailyLoss) DailyLoss(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// OrderRequest is a trade intent. Price is the reference price supplied by
// the market-data collaborator; the engine never fetches prices itself.
type OrderRequest struct {
	Symbol          string
	Action          string // BUY or SELL
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	OrderKind       string // MARKET (default) or LIMIT
	LimitPrice      *decimal.Decimal
	StopLossPrice   *decimal.Decimal
	TakeProfitPrice *decimal.Decimal
	Confidence      float64 // caller-supplied, opaque, in [0,1]
}

// OrderResult is the outcome of a successful submission.
type OrderResult struct {
	Trade    *domain.TradeRecord
	Balance  decimal.Decimal
	Holdings map[string]decimal.Decimal
}

// OrderService executes paper trades. All mutations of one account are
// serialized through a per-account mutex, and each submission persists the
// account snapshot and trade record in a single storage transaction.
type OrderService struct {
	tx        domain.TxManager
	accounts  domain.AccountRepository
	trades    domain.TradeRepository
	dailyLoss DailyLossProvider
	limits    risk.Limits
	// volatility is the assumed stop-loss distance for advisory risk
	// metadata.
	volatility float64

	// locks maps account ID to its *sync.Mutex. Entries are never removed;
	// the set of active accounts is small and bounded.
	locks sync.Map
}

// NewOrderService creates a new OrderService. A nil dailyLoss falls back
// to ZeroDailyLoss.
func NewOrderService(
	tx domain.TxManager,
	accounts domain.AccountRepository,
	trades domain.TradeRepository,
	dailyLoss DailyLossProvider,
	limits risk.Limits,
	volatility float64,
) *OrderService {
	if dailyLoss == nil {
		dailyLoss = ZeroDailyLoss{}
	}
	if volatility == 0 {
		volatility = risk.DefaultVolatility
	}
	return &OrderService{
		tx:         tx,
		accounts:   accounts,
		trades:     trades,
		dailyLoss:  dailyLoss,
		limits:     limits,
		volatility: volatility,
	}
}

func (s *OrderService) accountLock(id uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// SubmitOrder validates and executes a trade intent. MARKET orders mutate
// the ledger and land FILLED; LIMIT orders land OPEN without touching the
// ledger. Any error leaves account and ledger unchanged.
func (s *OrderService) SubmitOrder(ctx context.Context, accountID uuid.UUID, req OrderRequest) (*OrderResult, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}

	// The daily-loss figure comes from storage, not an external network
	// call, so fetching it before the lock keeps the serialized section
	// short without violating the blocking contract.
	dailyLoss, err := s.dailyLoss.DailyLoss(ctx, accountID)
	if err != nil {
		return nil, &domain.StorageFailureError{Op: "daily loss lookup", Err: err}
	}

	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	var result *OrderResult
	txErr := s.tx.WithinTx(ctx, func(accounts domain.AccountRepository, trades domain.TradeRepository) error {
		account, err := accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		totalCost := req.Quantity.Mul(req.Price)

		// Risk gate applies to BUY only: reducing exposure is always
		// permitted.
		if req.Action == domain.ActionBuy {
			allowed, reason := risk.CheckConstraints(account.Balance, totalCost, dailyLoss, s.limits)
			if !allowed {
				return &domain.RiskRejectedError{Reason: reason}
			}
		}

		meta := domain.RiskMetadata{
			StopLoss:   risk.StopLossReference(req.Price, req.Action, s.volatility),
			RiskLevel:  risk.ClassifyConfidence(req.Confidence),
			Confidence: req.Confidence,
		}

		if req.OrderKind == domain.OrderKindLimit {
			// Pending order: recorded at the limit price, ledger untouched
			// until a fill process transitions it.
			recordPrice := req.Price
			if req.LimitPrice != nil {
				recordPrice = *req.LimitPrice
			}
			trade := newTradeRecord(account.ID, req, recordPrice, domain.StatusOpen, meta)
			if err := trades.Save(ctx, trade); err != nil {
				return err
			}
			result = &OrderResult{Trade: trade, Balance: account.Balance, Holdings: account.Holdings}
			return nil
		}

		// MARKET execution at the supplied reference price.
		if req.Action == domain.ActionBuy {
			err = account.ApplyBuy(req.Symbol, req.Quantity, req.Price)
		} else {
			err = account.ApplySell(req.Symbol, req.Quantity, req.Price)
		}
		if err != nil {
			return err
		}

		if err := accounts.UpdateSnapshot(ctx, account); err != nil {
			return err
		}
		trade := newTradeRecord(account.ID, req, req.Price, domain.StatusFilled, meta)
		if err := trades.Save(ctx, trade); err != nil {
			return err
		}
		result = &OrderResult{Trade: trade, Balance: account.Balance, Holdings: account.Holdings}
		return nil
	})
	if txErr != nil {
		return nil, classify("submit order", txErr)
	}

	logger.Infof("[OK] %s %s order executed: %s %s @ %s (account %s)",
		result.Trade.OrderKind, result.Trade.Action, result.Trade.Quantity,
		result.Trade.Symbol, result.Trade.Price, accountID)

	return result, nil
}

// FillLimitOrder executes an OPEN limit order against its limit price. It
// is called by the fill poller, never by order submission. If the ledger
// rejects the fill (balance or holdings ran out since the order was
// placed) the order is cancelled instead.
func (s *OrderService) FillLimitOrder(ctx context.Context, tradeID uuid.UUID) error {
	trade, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		return classify("fill limit order", err)
	}
	if trade.OrderKind != domain.OrderKindLimit || trade.IsTerminal() {
		return domain.ErrOrderNotOpen
	}

	mu := s.accountLock(trade.AccountID)
	mu.Lock()
	defer mu.Unlock()

	txErr := s.tx.WithinTx(ctx, func(accounts domain.AccountRepository, trades domain.TradeRepository) error {
		claimed, err := trades.TransitionStatus(ctx, trade.ID, domain.StatusOpen, domain.StatusFilled)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrOrderNotOpen
		}

		account, err := accounts.GetByID(ctx, trade.AccountID)
		if err != nil {
			return err
		}
		if trade.Action == domain.ActionBuy {
			err = account.ApplyBuy(trade.Symbol, trade.Quantity, trade.Price)
		} else {
			err = account.ApplySell(trade.Symbol, trade.Quantity, trade.Price)
		}
		if err != nil {
			return err
		}
		return accounts.UpdateSnapshot(ctx, account)
	})
	if txErr == nil {
		logger.Infof("[OK] Limit order filled: %s %s %s @ %s", trade.Action,
			trade.Quantity, trade.Symbol, trade.Price)
		return nil
	}

	if errors.Is(txErr, domain.ErrInsufficientBalance) || errors.Is(txErr, domain.ErrInsufficientHoldings) {
		// The account can no longer honor the order; cancel it so the
		// poller stops retrying.
		if _, cancelErr := s.trades.TransitionStatus(ctx, trade.ID, domain.StatusOpen, domain.StatusCancelled); cancelErr != nil {
			return classify("cancel unfillable order", cancelErr)
		}
		logger.Warnf("Limit order %s cancelled: %v", trade.ID, txErr)
		return txErr
	}

	return classify("fill limit order", txErr)
}

// CancelOrder transitions the caller's OPEN order to CANCELLED. Terminal
// records never move.
func (s *OrderService) CancelOrder(ctx context.Context, accountID, tradeID uuid.UUID) error {
	trade, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		return classify("cancel order", err)
	}
	if trade.AccountID != accountID {
		return domain.ErrTradeNotFound
	}

	cancelled, err := s.trades.TransitionStatus(ctx, tradeID, domain.StatusOpen, domain.StatusCancelled)
	if err != nil {
		return classify("cancel order", err)
	}
	if !cancelled {
		return domain.ErrOrderNotOpen
	}

	logger.Infof("[OK] Order cancelled: %s (account %s)", tradeID, accountID)
	return nil
}

// ListTrades retrieves the account's trade history, most recent first.
func (s *OrderService) ListTrades(ctx context.Context, accountID uuid.UUID, filter domain.TradeFilter) ([]*domain.TradeRecord, error) {
	trades, err := s.trades.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, classify("list trades", err)
	}
	return trades, nil
}

// GetPositions returns the account's current balance and holdings.
func (s *OrderService) GetPositions(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, map[string]decimal.Decimal, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, nil, classify("get positions", err)
	}
	return account.Balance, account.Holdings, nil
}

// Deposit adds virtual funds to the balance and the invested-capital
// basis.
func (s *OrderService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	var balance decimal.Decimal
	err := s.tx.WithinTx(ctx, func(accounts domain.AccountRepository, _ domain.TradeRepository) error {
		account, err := accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := account.Deposit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateSnapshot(ctx, account); err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, classify("deposit", err)
	}

	logger.Infof("[OK] Deposit of $%s applied (account %s)", amount.StringFixed(2), accountID)
	return balance, nil
}

// Reset restores the default paper balance and clears all holdings.
func (s *OrderService) Reset(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, map[string]decimal.Decimal, error) {
	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	var balance decimal.Decimal
	var holdings map[string]decimal.Decimal
	err := s.tx.WithinTx(ctx, func(accounts domain.AccountRepository, _ domain.TradeRepository) error {
		account, err := accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		account.ResetPaper()
		if err := accounts.UpdateSnapshot(ctx, account); err != nil {
			return err
		}
		balance = account.Balance
		holdings = account.Holdings
		return nil
	})
	if err != nil {
		return decimal.Zero, nil, classify("reset", err)
	}

	logger.Infof("[OK] Paper account reset to $%s (account %s)", balance.StringFixed(2), accountID)
	return balance, holdings, nil
}

func normalizeRequest(req *OrderRequest) error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", domain.ErrInvalidRequest)
	}
	if req.Action != domain.ActionBuy && req.Action != domain.ActionSell {
		return fmt.Errorf("%w: action must be BUY or SELL", domain.ErrInvalidRequest)
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidRequest)
	}
	if req.OrderKind == "" {
		req.OrderKind = domain.OrderKindMarket
	}
	if req.OrderKind != domain.OrderKindMarket && req.OrderKind != domain.OrderKindLimit {
		return fmt.Errorf("%w: order kind must be MARKET or LIMIT", domain.ErrInvalidRequest)
	}
	if req.LimitPrice != nil && req.LimitPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: limit price must be positive", domain.ErrInvalidRequest)
	}
	return nil
}

func newTradeRecord(accountID uuid.UUID, req OrderRequest, price decimal.Decimal, status string, meta domain.RiskMetadata) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:              uuid.New(),
		AccountID:       accountID,
		Type:            domain.TradeTypePaper,
		Action:          req.Action,
		Symbol:          req.Symbol,
		Quantity:        req.Quantity,
		Price:           price,
		Total:           req.Quantity.Mul(price),
		Timestamp:       time.Now(),
		OrderKind:       req.OrderKind,
		LimitPrice:      req.LimitPrice,
		StopLossPrice:   req.StopLossPrice,
		TakeProfitPrice: req.TakeProfitPrice,
		Status:          status,
		Risk:            meta,
	}
}

// classify passes domain errors through untouched and wraps anything else
// as a storage failure.
func classify(op string, err error) error {
	var riskErr *domain.RiskRejectedError
	var storageErr *domain.StorageFailureError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTradeNotFound),
		errors.Is(err, domain.ErrOrderNotOpen),
		errors.As(err, &riskErr),
		errors.As(err, &storageErr):
		return err
	default:
		return &domain.StorageFailureError{Op: op, Err: err}
	}
}
