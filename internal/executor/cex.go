// Package executor contains the venue executors the router dispatches gated
// intents to: a CEX executor submitting signed market orders and a DEX
// executor driving the aggregator's quote/assemble protocol.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchenga/signalbot/internal/domain"
	"github.com/jchenga/signalbot/internal/platform/binance"
)

// CexExecutor executes intents on the centralized exchange. Buys are sized
// by quote-asset spend (quantity × expected price) rather than base
// quantity; sells are sized by base quantity.
type CexExecutor struct {
	client *binance.Client
	logger *slog.Logger
}

// NewCexExecutor creates a CexExecutor.
func NewCexExecutor(client *binance.Client, logger *slog.Logger) *CexExecutor {
	return &CexExecutor{
		client: client,
		logger: logger.With(slog.String("component", "cex_executor")),
	}
}

// Execute submits a market order for the intent and returns the exchange
// acknowledgement. No retry is attempted on failure.
func (e *CexExecutor) Execute(ctx context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error) {
	symbol := intent.Symbol()

	var (
		ack domain.OrderAck
		err error
	)
	switch intent.Side {
	case domain.SideBuy:
		quoteNotional := intent.Notional()
		e.logger.InfoContext(ctx, "submitting market buy",
			slog.String("intent_id", intent.ID),
			slog.String("symbol", symbol),
			slog.Float64("quote_order_qty", quoteNotional),
		)
		ack, err = e.client.MarketBuyQuote(ctx, symbol, quoteNotional)
	case domain.SideSell:
		e.logger.InfoContext(ctx, "submitting market sell",
			slog.String("intent_id", intent.ID),
			slog.String("symbol", symbol),
			slog.Float64("quantity", intent.Quantity),
		)
		ack, err = e.client.MarketSell(ctx, symbol, intent.Quantity)
	default:
		return domain.ExecutionReport{}, fmt.Errorf("executor: side %q: %w", intent.Side, domain.ErrUnknownEnum)
	}
	if err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("executor: cex %s %s: %w", intent.Side, symbol, err)
	}

	e.logger.InfoContext(ctx, "cex order accepted",
		slog.String("intent_id", intent.ID),
		slog.Int64("order_id", ack.OrderID),
		slog.String("status", ack.Status),
	)
	return domain.ExecutionReport{CexOrder: &ack}, nil
}
