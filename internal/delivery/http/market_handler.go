package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	"papertrade/internal/service"
)

// MarketHandler serves cached reference prices
type MarketHandler struct {
	prices *service.MarketPriceService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(prices *service.MarketPriceService) *MarketHandler {
	return &MarketHandler{prices: prices}
}

// Prices returns current prices for the requested symbols
// GET /api/market/prices?symbols=BTCUSDT,ETHUSDT
func (h *MarketHandler) Prices(c echo.Context) error {
	raw := c.QueryParam("symbols")
	if raw == "" {
		return BadRequestResponse(c, "symbols query parameter is required")
	}

	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	prices, err := h.prices.GetPrices(c.Request().Context(), symbols)
	if err != nil && len(prices) == 0 {
		return InternalServerErrorResponse(c, "Failed to fetch prices", err)
	}

	// Partial results are still useful; missing symbols are simply absent.
	return SuccessResponse(c, prices)
}
