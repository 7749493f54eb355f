package domain

import (
	"context"
	"time"
)

// BalanceSource reports the free balance of an asset on the execution
// account. A missing asset yields 0.0, not an error; callers treat zero as
// "no balance or unknown asset". An error means the lookup itself could not
// run (transport, auth), which the risk stages handle fail-open.
type BalanceSource interface {
	Balance(ctx context.Context, asset string) (float64, error)
}

// BalanceCache stores short-lived asset balances in front of the signed
// account endpoint.
type BalanceCache interface {
	GetBalance(ctx context.Context, asset string) (float64, error)
	SetBalance(ctx context.Context, asset string, free float64) error
}

// PriceCache stores the latest top-of-book prices produced by the market
// data feed.
type PriceCache interface {
	SetPrice(ctx context.Context, symbol string, bid, ask float64, ts time.Time) error
	GetPrice(ctx context.Context, symbol string) (TopOfBook, error)
}

// AssetBalance is one entry of the execution account's balance sheet.
type AssetBalance struct {
	Asset string  `json:"asset"`
	Free  float64 `json:"free"`
}

// TopOfBook is the best bid/ask snapshot for one symbol.
type TopOfBook struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	At     time.Time `json:"at"`
}
