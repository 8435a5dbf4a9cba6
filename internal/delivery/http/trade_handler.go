package http

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
	"papertrade/internal/usecase"
)

// TradeHandler handles paper trading requests
type TradeHandler struct {
	orders *usecase.OrderService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(orders *usecase.OrderService) *TradeHandler {
	return &TradeHandler{orders: orders}
}

// SubmitOrder executes a paper trade
// POST /api/trades/paper
func (h *TradeHandler) SubmitOrder(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.SubmitOrderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	result, err := h.orders.SubmitOrder(c.Request().Context(), accountID, usecase.OrderRequest{
		Symbol:          req.Symbol,
		Action:          req.Action,
		Quantity:        req.Quantity,
		Price:           req.Price,
		OrderKind:       req.OrderType,
		LimitPrice:      req.LimitPrice,
		StopLossPrice:   req.StopLossPrice,
		TakeProfitPrice: req.TakeProfitPrice,
		Confidence:      req.AIConfidence,
	})
	if err != nil {
		return orderError(c, err)
	}

	message := "Market order executed successfully"
	if result.Trade.OrderKind == domain.OrderKindLimit {
		message = "Limit order placed successfully"
	}

	return SuccessMessageResponse(c, message, map[string]interface{}{
		"trade":       result.Trade,
		"new_balance": result.Balance,
		"portfolio":   result.Holdings,
	})
}

// History returns the account's trade history, most recent first.
// Optional from/to query parameters bound the time range (RFC 3339).
// GET /api/trades/history
func (h *TradeHandler) History(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var filter domain.TradeFilter
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return BadRequestResponse(c, "Invalid 'from' timestamp")
		}
		filter.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return BadRequestResponse(c, "Invalid 'to' timestamp")
		}
		filter.To = t
	}

	trades, err := h.orders.ListTrades(c.Request().Context(), accountID, filter)
	if err != nil {
		return orderError(c, err)
	}
	if trades == nil {
		trades = []*domain.TradeRecord{}
	}

	return SuccessResponse(c, trades)
}

// Positions returns the current balance and holdings
// GET /api/trades/positions
func (h *TradeHandler) Positions(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	balance, holdings, err := h.orders.GetPositions(c.Request().Context(), accountID)
	if err != nil {
		return orderError(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"balance":   balance,
		"portfolio": holdings,
	})
}

// Deposit adds virtual funds to the account
// POST /api/trades/deposit
func (h *TradeHandler) Deposit(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.DepositRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	balance, err := h.orders.Deposit(c.Request().Context(), accountID, req.Amount)
	if err != nil {
		return orderError(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"balance": balance,
	})
}

// Reset restores the default paper balance and clears holdings
// POST /api/trades/reset
func (h *TradeHandler) Reset(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	balance, holdings, err := h.orders.Reset(c.Request().Context(), accountID)
	if err != nil {
		return orderError(c, err)
	}

	return SuccessMessageResponse(c, "Paper account reset", map[string]interface{}{
		"balance":   balance,
		"portfolio": holdings,
	})
}

// Cancel transitions the caller's OPEN limit order to CANCELLED
// POST /api/trades/:id/cancel
func (h *TradeHandler) Cancel(c echo.Context) error {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	tradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid trade id")
	}

	if err := h.orders.CancelOrder(c.Request().Context(), accountID, tradeID); err != nil {
		return orderError(c, err)
	}

	return SuccessMessageResponse(c, "Order cancelled", nil)
}

// orderError maps engine errors onto HTTP responses.
func orderError(c echo.Context, err error) error {
	var riskErr *domain.RiskRejectedError
	switch {
	case errors.As(err, &riskErr):
		return BadRequestResponse(c, riskErr.Reason)
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidAmount):
		return BadRequestResponse(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		return BadRequestResponse(c, "Insufficient paper trading balance")
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return BadRequestResponse(c, "Insufficient holdings to sell")
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTradeNotFound):
		return NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrOrderNotOpen):
		return ConflictResponse(c, "Order is no longer open")
	default:
		return InternalServerErrorResponse(c, "Server error executing trade", err)
	}
}
