package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchenga/signalbot/internal/domain"
)

// PositionSizer clamps an intent's quantity so the resulting notional never
// exceeds a fixed fraction of total portfolio value. It only ever shrinks a
// position, never blocks one; on a failed balance lookup it returns the
// intent unchanged with a warning.
type PositionSizer struct {
	balances domain.BalanceSource
	ratio    float64
	logger   *slog.Logger
}

// NewPositionSizer creates a PositionSizer with the given position ratio
// (e.g. 0.1 for 10% of portfolio value per position).
func NewPositionSizer(balances domain.BalanceSource, ratio float64, logger *slog.Logger) *PositionSizer {
	return &PositionSizer{
		balances: balances,
		ratio:    ratio,
		logger:   logger.With(slog.String("component", "position_sizer")),
	}
}

// Adjust returns the intent with its quantity clamped to the position limit.
// Portfolio value is the quote balance plus the base balance marked at the
// expected price. Re-applying Adjust to an already-clamped intent with
// unchanged balances is a no-op.
func (s *PositionSizer) Adjust(ctx context.Context, intent domain.TransactionIntent) (domain.TransactionIntent, []string) {
	baseBalance, err := s.balances.Balance(ctx, intent.Pair)
	if err != nil {
		return intent, s.failOpen(ctx, intent, intent.Pair, err)
	}
	quoteBalance, err := s.balances.Balance(ctx, quoteAsset)
	if err != nil {
		return intent, s.failOpen(ctx, intent, quoteAsset, err)
	}

	portfolioValue := quoteBalance + baseBalance*intent.ExpectedPrice
	maxPositionValue := portfolioValue * s.ratio

	if intent.Notional() > maxPositionValue {
		adjusted := maxPositionValue / intent.ExpectedPrice
		s.logger.WarnContext(ctx, "clamping position size",
			slog.String("intent_id", intent.ID),
			slog.Float64("quantity", intent.Quantity),
			slog.Float64("adjusted", adjusted),
			slog.Float64("max_position_value", maxPositionValue),
		)
		intent.Quantity = adjusted
	}
	return intent, nil
}

func (s *PositionSizer) failOpen(ctx context.Context, intent domain.TransactionIntent, asset string, err error) []string {
	s.logger.WarnContext(ctx, "balance lookup failed, leaving position size unchanged",
		slog.String("intent_id", intent.ID),
		slog.String("asset", asset),
		slog.String("error", err.Error()),
	)
	return []string{fmt.Sprintf("position sizing for %s could not run: %v", asset, err)}
}
