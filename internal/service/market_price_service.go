package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"papertrade/pkg/logger"
)

// DefaultPriceTTL is how long a fetched price table stays fresh.
const DefaultPriceTTL = 10 * time.Second

// MarketPriceService fetches reference prices from Binance and serves them
// through an explicit process-wide cache: one table of all tickers, a
// recorded fetch time, and a refresh-on-expiry rule. The execution engine
// never calls this inline; prices reach it as plain inputs.
type MarketPriceService struct {
	client *resty.Client
	ttl    time.Duration

	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewMarketPriceService creates a new MarketPriceService. A zero ttl falls
// back to DefaultPriceTTL.
func NewMarketPriceService(baseURL string, ttl time.Duration) *MarketPriceService {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &MarketPriceService{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		ttl:    ttl,
		prices: make(map[string]decimal.Decimal),
	}
}

// GetPrices returns current prices for the requested symbols, refreshing
// the cache first when it has expired. Missing symbols produce an error
// alongside the partial result.
func (s *MarketPriceService) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return make(map[string]decimal.Decimal), nil
	}

	if err := s.refreshIfStale(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]decimal.Decimal, len(symbols))
	var missing []string
	for _, symbol := range symbols {
		upper := strings.ToUpper(symbol)
		if price, ok := s.prices[upper]; ok {
			result[upper] = price
		} else {
			missing = append(missing, symbol)
		}
	}

	if len(missing) > 0 {
		return result, fmt.Errorf("missing prices for symbols: %v", missing)
	}
	return result, nil
}

// GetPrice returns the current price for a single symbol.
func (s *MarketPriceService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := s.GetPrices(ctx, []string{symbol})
	if err != nil {
		return decimal.Zero, err
	}
	return prices[strings.ToUpper(symbol)], nil
}

func (s *MarketPriceService) refreshIfStale(ctx context.Context) error {
	s.mu.RLock()
	fresh := time.Since(s.fetchedAt) < s.ttl && len(s.prices) > 0
	s.mu.RUnlock()
	if fresh {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh replaces the cached price table with a fresh fetch of all
// tickers in one API call.
func (s *MarketPriceService) Refresh(ctx context.Context) error {
	var tickers []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&tickers).
		Get("/api/v3/ticker/price")
	if err != nil {
		return fmt.Errorf("failed to fetch prices: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("price API error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		price, err := decimal.NewFromString(ticker.Price)
		if err != nil {
			continue
		}
		prices[strings.ToUpper(ticker.Symbol)] = price
	}

	s.mu.Lock()
	s.prices = prices
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	logger.Debugf("Price cache refreshed: %d tickers", len(prices))
	return nil
}
