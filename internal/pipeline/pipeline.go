package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jchenga/signalbot/internal/domain"
	"github.com/jchenga/signalbot/internal/event"
)

// Pipeline is the end-to-end intent processor: parse, risk gate, position
// sizing, market-condition gate, venue routing, venue execution. Each
// invocation handles exactly one intent with no intra-pipeline parallelism;
// concurrent invocations share only the read-only executors and balance
// source.
type Pipeline struct {
	risk   *RiskGate
	sizer  *PositionSizer
	market *MarketConditionGate
	router *Router
	logger *slog.Logger
}

// New creates a Pipeline from its stages.
func New(risk *RiskGate, sizer *PositionSizer, market *MarketConditionGate, router *Router, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		risk:   risk,
		sizer:  sizer,
		market: market,
		router: router,
		logger: logger.With(slog.String("component", "pipeline")),
	}
}

// HandleEvent runs one raw event through the full pipeline. It never
// propagates a failure back to the event source: every outcome, whether
// executed, rejected, or failed at any stage, is logged and returned as a structured
// result, so one malformed or failing event cannot take down the service
// loop.
func (p *Pipeline) HandleEvent(ctx context.Context, raw string) domain.PipelineResult {
	intent, err := event.Parse(raw)
	if err != nil {
		p.logger.ErrorContext(ctx, "event rejected at parse",
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)
		return domain.PipelineResult{
			Outcome: domain.OutcomeFailed,
			Stage:   domain.StageParse,
			Reason:  err.Error(),
		}
	}
	return p.Process(ctx, intent)
}

// Process runs an already-parsed intent through the gating, sizing, routing,
// and execution stages.
func (p *Pipeline) Process(ctx context.Context, intent domain.TransactionIntent) domain.PipelineResult {
	p.logger.InfoContext(ctx, "intent received",
		slog.String("intent_id", intent.ID),
		slog.String("venue", string(intent.Venue)),
		slog.String("pair", intent.Pair),
		slog.String("side", string(intent.Side)),
		slog.Float64("quantity", intent.Quantity),
		slog.Float64("expected_price", intent.ExpectedPrice),
	)

	var warnings []string

	riskDecision := p.risk.Check(ctx, intent)
	if !riskDecision.OK {
		p.logger.WarnContext(ctx, "intent rejected by risk gate",
			slog.String("intent_id", intent.ID),
			slog.String("reason", riskDecision.Reason),
		)
		return rejected(intent, domain.StageRisk, riskDecision.Reason, warnings)
	}
	warnings = append(warnings, riskDecision.Warnings...)

	intent, sizeWarnings := p.sizer.Adjust(ctx, intent)
	warnings = append(warnings, sizeWarnings...)

	if d := p.market.Check(intent); !d.OK {
		p.logger.WarnContext(ctx, "intent rejected by market conditions",
			slog.String("intent_id", intent.ID),
			slog.String("reason", d.Reason),
		)
		return rejected(intent, domain.StageMarket, d.Reason, warnings)
	}

	report, err := p.router.Route(ctx, intent)
	if err != nil {
		stage := domain.StageExecute
		if isRoutingErr(err) {
			stage = domain.StageRoute
		}
		p.logger.ErrorContext(ctx, "intent execution failed",
			slog.String("intent_id", intent.ID),
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()),
		)
		return domain.PipelineResult{
			Intent:   &intent,
			Outcome:  domain.OutcomeFailed,
			Stage:    stage,
			Reason:   err.Error(),
			Warnings: warnings,
		}
	}

	p.logger.InfoContext(ctx, "intent executed",
		slog.String("intent_id", intent.ID),
		slog.String("venue", string(intent.Venue)),
	)
	return domain.PipelineResult{
		Intent:   &intent,
		Outcome:  domain.OutcomeExecuted,
		Stage:    domain.StageExecute,
		Warnings: warnings,
		CexOrder: report.CexOrder,
		DexSwap:  report.DexSwap,
	}
}

func rejected(intent domain.TransactionIntent, stage domain.Stage, reason string, warnings []string) domain.PipelineResult {
	return domain.PipelineResult{
		Intent:   &intent,
		Outcome:  domain.OutcomeRejected,
		Stage:    stage,
		Reason:   reason,
		Warnings: warnings,
	}
}

func isRoutingErr(err error) bool {
	return errors.Is(err, domain.ErrRouting)
}
