package domain

// Quote is the aggregator's answer to the quote phase of a DEX swap. It is
// ephemeral: the path ID is only valid until consumed by the assemble phase,
// and an assemble failure referencing a stale path is a hard error with no
// retry edge back to the quote phase.
type Quote struct {
	PathID      string    `json:"pathId"`
	InValues    []float64 `json:"inValues"`
	OutValues   []float64 `json:"outValues"`
	GasEstimate float64   `json:"gasEstimate"`
	PriceImpact float64   `json:"priceImpact"`
}

// TxState tracks the lifecycle of an assembled swap transaction. The
// pipeline only ever produces TxStateUnsigned; the Unsigned→Signed edge is a
// documented extension point requiring an external signer, and Broadcast is
// out of scope entirely.
type TxState string

const (
	TxStateUnsigned  TxState = "unsigned"
	TxStateSigned    TxState = "signed"
	TxStateBroadcast TxState = "broadcast"
)

// AssembledTransaction is the terminal output of the DEX path: an unsigned,
// simulate-flagged transaction descriptor. Simulate is forced true by the
// executor on every pass; a broadcast-ready transaction never leaves the
// pipeline.
type AssembledTransaction struct {
	To       string  `json:"to"`
	Value    string  `json:"value"`
	Gas      int64   `json:"gas"`
	Data     string  `json:"data"`
	Simulate bool    `json:"simulate"`
	State    TxState `json:"state"`
	PathID   string  `json:"pathId"`
}
