package dto

import (
	"github.com/shopspring/decimal"
)

// SubmitOrderRequest is the payload for executing a paper trade.
type SubmitOrderRequest struct {
	Symbol          string           `json:"symbol"`
	Action          string           `json:"action"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	OrderType       string           `json:"order_type"`
	LimitPrice      *decimal.Decimal `json:"limit_price,omitempty"`
	StopLossPrice   *decimal.Decimal `json:"stop_loss_price,omitempty"`
	TakeProfitPrice *decimal.Decimal `json:"take_profit_price,omitempty"`
	AIConfidence    float64          `json:"ai_confidence"`
}

// DepositRequest is the payload for adding virtual funds.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
