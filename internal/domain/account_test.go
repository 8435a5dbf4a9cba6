package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewAccountDefaults(t *testing.T) {
	acc := NewAccount("trader", "hash")

	assert.True(t, acc.Balance.Equal(DefaultPaperBalance))
	assert.True(t, acc.InvestedCapital.Equal(DefaultPaperBalance))
	assert.Empty(t, acc.Holdings)
	assert.NotEqual(t, acc.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestApplyBuy(t *testing.T) {
	acc := NewAccount("trader", "hash")

	require.NoError(t, acc.ApplyBuy("btc", d("0.5"), d("5000")))
	assert.True(t, acc.Balance.Equal(d("7500")))
	assert.True(t, acc.Holding("BTC").Equal(d("0.5")), "symbol should be uppercased")
}

func TestApplyBuyExactBalance(t *testing.T) {
	acc := NewAccount("trader", "hash")

	// Spending the entire balance is allowed.
	require.NoError(t, acc.ApplyBuy("ETH", d("4"), d("2500")))
	assert.True(t, acc.Balance.IsZero())
}

func TestApplyBuyOneCentOver(t *testing.T) {
	acc := NewAccount("trader", "hash")

	err := acc.ApplyBuy("ETH", d("1"), d("10000.01"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Rejected orders leave the account untouched.
	assert.True(t, acc.Balance.Equal(DefaultPaperBalance))
	assert.Empty(t, acc.Holdings)
}

func TestApplySell(t *testing.T) {
	acc := NewAccount("trader", "hash")
	require.NoError(t, acc.ApplyBuy("SOL", d("10"), d("100")))

	require.NoError(t, acc.ApplySell("SOL", d("4"), d("120")))
	assert.True(t, acc.Balance.Equal(d("9480")), "got %s", acc.Balance)
	assert.True(t, acc.Holding("SOL").Equal(d("6")))
}

func TestApplySellRemovesEmptyHolding(t *testing.T) {
	acc := NewAccount("trader", "hash")
	require.NoError(t, acc.ApplyBuy("SOL", d("10"), d("100")))

	require.NoError(t, acc.ApplySell("SOL", d("10"), d("100")))
	_, ok := acc.Holdings["SOL"]
	assert.False(t, ok, "zero-quantity holdings must be removed")
}

func TestApplySellInsufficientHoldings(t *testing.T) {
	acc := NewAccount("trader", "hash")
	require.NoError(t, acc.ApplyBuy("SOL", d("1"), d("100")))

	err := acc.ApplySell("SOL", d("2"), d("100"))
	require.ErrorIs(t, err, ErrInsufficientHoldings)
	assert.True(t, acc.Balance.Equal(d("9900")))
	assert.True(t, acc.Holding("SOL").Equal(d("1")))

	err = acc.ApplySell("DOGE", d("1"), d("1"))
	require.ErrorIs(t, err, ErrInsufficientHoldings, "unknown symbol means zero held")
}

func TestBuySellRoundTripConservesValue(t *testing.T) {
	acc := NewAccount("trader", "hash")

	// Buying and selling the same quantity at the same price must restore
	// the starting balance exactly, with no float drift.
	require.NoError(t, acc.ApplyBuy("BTC", d("0.123456"), d("43210.987")))
	require.NoError(t, acc.ApplySell("BTC", d("0.123456"), d("43210.987")))

	assert.True(t, acc.Balance.Equal(DefaultPaperBalance), "got %s", acc.Balance)
	assert.Empty(t, acc.Holdings)
}

func TestDeposit(t *testing.T) {
	acc := NewAccount("trader", "hash")

	require.NoError(t, acc.Deposit(d("500")))
	assert.True(t, acc.Balance.Equal(d("10500")))
	assert.True(t, acc.InvestedCapital.Equal(d("10500")))

	require.ErrorIs(t, acc.Deposit(d("-5")), ErrInvalidAmount)
	require.ErrorIs(t, acc.Deposit(decimal.Zero), ErrInvalidAmount)
	assert.True(t, acc.Balance.Equal(d("10500")), "failed deposits must not change the balance")
}

func TestResetPaper(t *testing.T) {
	acc := NewAccount("trader", "hash")
	require.NoError(t, acc.Deposit(d("1000")))
	require.NoError(t, acc.ApplyBuy("BTC", d("0.1"), d("40000")))

	acc.ResetPaper()
	assert.True(t, acc.Balance.Equal(DefaultPaperBalance))
	assert.True(t, acc.InvestedCapital.Equal(DefaultPaperBalance))
	assert.Empty(t, acc.Holdings)
}

func TestClone(t *testing.T) {
	acc := NewAccount("trader", "hash")
	require.NoError(t, acc.ApplyBuy("BTC", d("1"), d("100")))

	cp := acc.Clone()
	require.NoError(t, cp.ApplyBuy("BTC", d("1"), d("100")))

	assert.True(t, acc.Holding("BTC").Equal(d("1")), "clone must not share the holdings map")
	assert.True(t, cp.Holding("BTC").Equal(d("2")))
}
