package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeRecord is one entry in the append-only trade ledger. A record is
// immutable once written except for the status transition of an OPEN limit
// order to FILLED or CANCELLED.
type TradeRecord struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Type      string          `json:"type"`   // paper or live; only paper is supported
	Action    string          `json:"action"` // BUY or SELL
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	// Price is the reference price the record was created at. For limit
	// orders this is the limit price.
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"` // quantity * price, fixed at creation
	Timestamp time.Time       `json:"timestamp"`
	OrderKind string          `json:"order_kind"` // MARKET or LIMIT

	LimitPrice      *decimal.Decimal `json:"limit_price,omitempty"`
	StopLossPrice   *decimal.Decimal `json:"stop_loss_price,omitempty"`
	TakeProfitPrice *decimal.Decimal `json:"take_profit_price,omitempty"`

	Status string       `json:"status"`
	Risk   RiskMetadata `json:"risk_metrics"`
}

// RiskMetadata is advisory information attached to every trade record.
// The stop-loss reference is stored but never acted upon automatically.
type RiskMetadata struct {
	StopLoss   decimal.Decimal `json:"stop_loss"`
	RiskLevel  string          `json:"risk_level"`
	Confidence float64         `json:"ai_confidence"`
}

// Trade type constants
const (
	TradeTypePaper = "paper"
	TradeTypeLive  = "live"
)

// Trade action constants
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Order kind constants
const (
	OrderKindMarket = "MARKET"
	OrderKindLimit  = "LIMIT"
)

// Trade status constants
const (
	StatusOpen      = "OPEN"
	StatusFilled    = "FILLED"
	StatusCancelled = "CANCELLED"
	StatusClosed    = "CLOSED"
)

// Risk level constants
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// IsTerminal reports whether the record's status permits no further
// transition. Only OPEN records may move.
func (t *TradeRecord) IsTerminal() bool {
	return t.Status != StatusOpen
}

// TradeFilter narrows a trade ledger query. Zero times mean unbounded.
type TradeFilter struct {
	From time.Time
	To   time.Time
}
