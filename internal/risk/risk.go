// Package risk provides the pre-trade risk evaluator: pure functions over
// values passed in, with no hidden state. Stop-loss references and position
// sizes are advisory; only CheckConstraints gates order execution.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// Default risk parameters.
const (
	DefaultVolatility   = 0.02 // assumed distance to stop loss
	DefaultRiskPerTrade = 0.01 // fraction of equity risked per trade
)

// Limits holds the portfolio-level constraint thresholds.
type Limits struct {
	// MaxPositionPct is the maximum fraction of the balance allowed in a
	// single order (e.g. 0.20 for 20%).
	MaxPositionPct float64
	// MaxDailyLossPct is the realized daily loss fraction at which further
	// buying stops (e.g. 0.05 for 5%).
	MaxDailyLossPct float64
}

// DefaultLimits returns the stock 20% position / 5% daily loss thresholds.
func DefaultLimits() Limits {
	return Limits{MaxPositionPct: 0.20, MaxDailyLossPct: 0.05}
}

// StopLossReference suggests a stop-loss price for an entry: below the
// entry for a BUY, above it for a SELL, offset by volatility.
func StopLossReference(entryPrice decimal.Decimal, action string, volatility float64) decimal.Decimal {
	if action == domain.ActionBuy {
		return entryPrice.Mul(decimal.NewFromFloat(1 - volatility))
	}
	return entryPrice.Mul(decimal.NewFromFloat(1 + volatility))
}

// SuggestPositionSize suggests an order quantity that risks riskPerTrade of
// the balance, assuming volatility is the distance to the stop loss:
//
//	riskAmount = balance * riskPerTrade
//	positionValue = riskAmount / volatility
//	quantity = positionValue / price
func SuggestPositionSize(balance, price decimal.Decimal, volatility, riskPerTrade float64) decimal.Decimal {
	if price.IsZero() || volatility == 0 {
		return decimal.Zero
	}
	riskAmount := balance.Mul(decimal.NewFromFloat(riskPerTrade))
	positionValue := riskAmount.Div(decimal.NewFromFloat(volatility))
	return positionValue.Div(price)
}

// CheckConstraints validates a proposed trade value against the position
// size and daily loss limits. The daily loss figure is supplied by the
// caller; this package does not compute realized P&L. The returned reason
// names the breached limit and its dollar threshold.
func CheckConstraints(balance, tradeValue, currentDailyLoss decimal.Decimal, limits Limits) (bool, string) {
	maxPositionSize := balance.Mul(decimal.NewFromFloat(limits.MaxPositionPct))
	maxDailyLoss := balance.Mul(decimal.NewFromFloat(limits.MaxDailyLossPct))

	if tradeValue.GreaterThan(maxPositionSize) {
		return false, fmt.Sprintf("Risk Alert: Position size exceeds %.0f%% limit ($%s)",
			limits.MaxPositionPct*100, maxPositionSize.StringFixed(2))
	}

	if currentDailyLoss.GreaterThanOrEqual(maxDailyLoss) {
		return false, fmt.Sprintf("Risk Alert: Daily loss limit hit ($%s)",
			maxDailyLoss.StringFixed(2))
	}

	return true, ""
}

// ClassifyConfidence maps a caller-supplied confidence score in [0,1] to a
// discrete risk level: high confidence means low risk.
func ClassifyConfidence(confidence float64) string {
	switch {
	case confidence > 0.8:
		return domain.RiskLevelLow
	case confidence > 0.5:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelHigh
	}
}
