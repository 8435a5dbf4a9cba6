package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

func accountWithBalance(username string, balance, invested decimal.Decimal) *domain.Account {
	acc := domain.NewAccount(username, "hash")
	acc.Balance = balance
	acc.InvestedCapital = invested
	return acc
}

func TestTopTradersRanksByProfit(t *testing.T) {
	repo := &stubAccountRepo{accounts: []*domain.Account{
		accountWithBalance("alice", decimal.NewFromInt(12000), decimal.NewFromInt(10000)),
		accountWithBalance("bob", decimal.NewFromInt(9000), decimal.NewFromInt(10000)),
		accountWithBalance("carol", decimal.NewFromInt(15000), decimal.NewFromInt(10000)),
		accountWithBalance("idle", decimal.NewFromInt(10000), decimal.NewFromInt(10000)),
	}}

	entries, err := NewLeaderboardService(repo).TopTraders(context.Background())
	require.NoError(t, err)

	// The account sitting at its invested capital is treated as inactive.
	require.Len(t, entries, 3)
	assert.Equal(t, "carol", entries[0].Name)
	assert.Equal(t, "alice", entries[1].Name)
	assert.Equal(t, "bob", entries[2].Name)

	assert.True(t, entries[0].Profit.Equal(decimal.NewFromInt(5000)))
	assert.True(t, entries[0].ROI.Equal(decimal.NewFromInt(50)))
	assert.True(t, entries[2].Profit.Equal(decimal.NewFromInt(-1000)))
	assert.True(t, entries[2].ROI.Equal(decimal.NewFromInt(-10)))
}

func TestTopTradersROIUsesInvestedCapital(t *testing.T) {
	// Same profit, different basis: the deposit-heavy account shows a
	// smaller ROI.
	repo := &stubAccountRepo{accounts: []*domain.Account{
		accountWithBalance("light", decimal.NewFromInt(11000), decimal.NewFromInt(10000)),
		accountWithBalance("heavy", decimal.NewFromInt(21000), decimal.NewFromInt(20000)),
	}}

	entries, err := NewLeaderboardService(repo).TopTraders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]LeaderboardEntry{entries[0].Name: entries[0], entries[1].Name: entries[1]}
	assert.True(t, byName["light"].ROI.Equal(decimal.NewFromInt(10)))
	assert.True(t, byName["heavy"].ROI.Equal(decimal.NewFromInt(5)))
}

func TestTopTradersCapsAtTen(t *testing.T) {
	var accounts []*domain.Account
	for i := 0; i < 15; i++ {
		accounts = append(accounts, accountWithBalance(
			fmt.Sprintf("trader%02d", i),
			decimal.NewFromInt(int64(10000+100*(i+1))),
			decimal.NewFromInt(10000),
		))
	}
	repo := &stubAccountRepo{accounts: accounts}

	entries, err := NewLeaderboardService(repo).TopTraders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, LeaderboardSize)
	assert.Equal(t, "trader14", entries[0].Name, "best performer leads")
}
