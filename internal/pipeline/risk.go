// Package pipeline implements the transaction processing pipeline: risk
// gating, position sizing, market-condition gating, venue routing, and the
// non-crashing event entry point.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchenga/signalbot/internal/domain"
)

// quoteAsset is the quote currency all pairs trade against.
const quoteAsset = "USDT"

// Decision is the outcome of a policy gate. A rejection is a decision, not a
// defect. Warnings carry checks that could not run (e.g. a failed balance
// lookup) and therefore passed by default.
type Decision struct {
	OK       bool
	Reason   string
	Warnings []string
}

// Accept returns a passing decision with optional warnings.
func Accept(warnings ...string) Decision {
	return Decision{OK: true, Warnings: warnings}
}

// Reject returns a failing decision with the given reason.
func Reject(reason string) Decision {
	return Decision{OK: false, Reason: reason}
}

// RiskConfig holds the tunable pre-trade risk limits.
type RiskConfig struct {
	// MinQuantity is the smallest acceptable base quantity.
	MinQuantity float64
	// MaxTradeNotional is the largest acceptable notional, in quote-asset
	// units.
	MaxTradeNotional float64
	// PositionRatio caps a single position at this fraction of total
	// portfolio value. Used by the position sizer.
	PositionRatio float64
}

// RiskGate rejects intents below the minimum quantity, above the maximum
// notional, or exceeding the available balance. A balance lookup that itself
// errors does not reject: the gate records a warning and proceeds, keeping
// "check failed the policy" and "check could not run" as distinct outcomes.
type RiskGate struct {
	balances domain.BalanceSource
	cfg      RiskConfig
	logger   *slog.Logger
}

// NewRiskGate creates a RiskGate.
func NewRiskGate(balances domain.BalanceSource, cfg RiskConfig, logger *slog.Logger) *RiskGate {
	return &RiskGate{
		balances: balances,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "risk_gate")),
	}
}

// Check applies the risk rules in order: minimum quantity, maximum notional,
// then available balance.
func (g *RiskGate) Check(ctx context.Context, intent domain.TransactionIntent) Decision {
	if intent.Quantity < g.cfg.MinQuantity {
		return Reject(fmt.Sprintf("quantity too small: %v < %v", intent.Quantity, g.cfg.MinQuantity))
	}

	notional := intent.Notional()
	if notional > g.cfg.MaxTradeNotional {
		return Reject(fmt.Sprintf("exceeds max trade size: %.2f > %.2f %s", notional, g.cfg.MaxTradeNotional, quoteAsset))
	}

	// BUY needs the notional in quote asset; SELL needs the base quantity.
	asset, required := quoteAsset, notional
	if intent.Side == domain.SideSell {
		asset, required = intent.Pair, intent.Quantity
	}

	balance, err := g.balances.Balance(ctx, asset)
	if err != nil {
		warning := fmt.Sprintf("balance check for %s could not run: %v", asset, err)
		g.logger.WarnContext(ctx, "balance lookup failed, proceeding without check",
			slog.String("intent_id", intent.ID),
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		return Accept(warning)
	}
	if balance < required {
		return Reject(fmt.Sprintf("insufficient balance: %v %s < %v", balance, asset, required))
	}

	return Accept()
}
