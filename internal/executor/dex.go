package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/jchenga/signalbot/internal/domain"
	"github.com/jchenga/signalbot/internal/platform/odos"
	"github.com/jchenga/signalbot/internal/registry"
)

// DexExecutor executes intents through the DEX aggregator's two-phase
// quote/assemble protocol. The assemble phase always runs with the simulate
// flag forced true: the executor's terminal output is an unsigned
// transaction descriptor, never a broadcast-ready transaction.
type DexExecutor struct {
	client   *odos.Client
	registry *registry.Registry
	userAddr string
	slippage float64
	logger   *slog.Logger
}

// NewDexExecutor creates a DexExecutor. slippagePercent is the quote-phase
// slippage limit (e.g. 1 for 1%).
func NewDexExecutor(client *odos.Client, reg *registry.Registry, userAddr string, slippagePercent float64, logger *slog.Logger) *DexExecutor {
	return &DexExecutor{
		client:   client,
		registry: reg,
		userAddr: userAddr,
		slippage: slippagePercent,
		logger:   logger.With(slog.String("component", "dex_executor")),
	}
}

// Execute resolves the pair's token addresses, quotes the swap, and
// assembles the unsigned transaction. There is no retry edge from a failed
// assemble back to the quote phase; the stale path is a hard error.
func (e *DexExecutor) Execute(ctx context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error) {
	traded, err := e.registry.Resolve(intent.Pair)
	if err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("executor: dex %s: %w", intent.Pair, err)
	}
	quoteAsset := e.registry.QuoteAsset()

	// Swap amount in the traded token's minor units. Attached to the input
	// token on both sides: the traded token when selling, the quote asset
	// when buying.
	amount := minorUnits(intent.Quantity, traded.Decimals)

	in, out := quoteAsset, traded
	if intent.Side == domain.SideSell {
		in, out = traded, quoteAsset
	}

	e.logger.InfoContext(ctx, "requesting swap quote",
		slog.String("intent_id", intent.ID),
		slog.Int("chain_id", e.registry.ChainID()),
		slog.String("in_token", in.Symbol),
		slog.String("out_token", out.Symbol),
		slog.String("amount", amount),
	)

	quote, err := e.client.Quote(ctx, odos.QuoteRequest{
		ChainID: e.registry.ChainID(),
		InputTokens: []odos.InputToken{
			{TokenAddress: in.Address.Hex(), Amount: amount},
		},
		OutputTokens: []odos.OutputToken{
			{TokenAddress: out.Address.Hex(), Proportion: 1},
		},
		SlippageLimitPercent: e.slippage,
		UserAddr:             e.userAddr,
	})
	if err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("executor: dex quote %s: %w", intent.Pair, err)
	}

	e.logger.InfoContext(ctx, "swap quote received",
		slog.String("intent_id", intent.ID),
		slog.String("path_id", quote.PathID),
		slog.Float64("gas_estimate", quote.GasEstimate),
		slog.Float64("price_impact", quote.PriceImpact),
	)

	tx, err := e.client.Assemble(ctx, quote.PathID, e.userAddr, true)
	if err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("executor: dex assemble %s: %w", intent.Pair, err)
	}

	e.logger.InfoContext(ctx, "swap transaction assembled",
		slog.String("intent_id", intent.ID),
		slog.String("to", tx.To),
		slog.String("value", tx.Value),
		slog.Int64("gas", tx.Gas),
		slog.Bool("simulate", tx.Simulate),
	)
	return domain.ExecutionReport{DexSwap: &tx}, nil
}

// minorUnits converts a decimal quantity to the token's minor units as a
// decimal string, e.g. 1.5 with 18 decimals → "1500000000000000000".
func minorUnits(quantity float64, decimals int) string {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled := new(big.Float).Mul(big.NewFloat(quantity), scale)
	wei, _ := scaled.Int(nil)
	return wei.String()
}
