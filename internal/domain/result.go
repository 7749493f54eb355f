package domain

// Outcome classifies how a pipeline pass ended.
type Outcome string

const (
	// OutcomeExecuted means the intent reached a venue adapter and the
	// adapter call succeeded.
	OutcomeExecuted Outcome = "executed"
	// OutcomeRejected means a policy stage (risk or market conditions)
	// declined the intent. Rejections are decisions, not defects.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means parsing, routing, or venue execution errored.
	OutcomeFailed Outcome = "failed"
)

// Stage identifies the pipeline stage that produced a result.
type Stage string

const (
	StageParse   Stage = "parse"
	StageRisk    Stage = "risk"
	StageSize    Stage = "size"
	StageMarket  Stage = "market"
	StageRoute   Stage = "route"
	StageExecute Stage = "execute"
)

// PipelineResult is the structured outcome of one pipeline pass. The entry
// point returns it instead of swallowing failures into logs, so callers can
// distinguish "rejected by policy" from "crashed mid-execution" without
// parsing log output.
type PipelineResult struct {
	Intent  *TransactionIntent `json:"intent,omitempty"`
	Outcome Outcome            `json:"outcome"`
	Stage   Stage              `json:"stage"`
	// Reason is set for rejections and failures.
	Reason string `json:"reason,omitempty"`
	// Warnings carries "check could not run" conditions (e.g. a balance
	// lookup that errored) that did not block the intent but require
	// operator attention.
	Warnings []string `json:"warnings,omitempty"`
	// CexOrder is set when a CEX order was submitted.
	CexOrder *OrderAck `json:"cex_order,omitempty"`
	// DexSwap is set when a DEX swap was quoted and assembled.
	DexSwap *AssembledTransaction `json:"dex_swap,omitempty"`
}

// Ok reports whether the intent was executed.
func (r PipelineResult) Ok() bool { return r.Outcome == OutcomeExecuted }

// ExecutionReport is what a venue executor hands back to the router: exactly
// one of the venue-specific fields is set.
type ExecutionReport struct {
	CexOrder *OrderAck             `json:"cex_order,omitempty"`
	DexSwap  *AssembledTransaction `json:"dex_swap,omitempty"`
}

// OrderAck is the acknowledgement returned by the CEX for a submitted order.
type OrderAck struct {
	Symbol        string  `json:"symbol"`
	OrderID       int64   `json:"orderId"`
	ClientOrderID string  `json:"clientOrderId"`
	Status        string  `json:"status"`
	ExecutedQty   float64 `json:"executedQty,string"`
	CummQuoteQty  float64 `json:"cummulativeQuoteQty,string"`
}
