// Package domain holds the core trading types shared across the bot:
// transaction intents, pipeline results, venue payloads, and the sentinel
// errors that classify failures.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Venue identifies the execution venue class for an intent.
type Venue string

const (
	// VenueCEX routes to the centralized-exchange adapter.
	VenueCEX Venue = "cex"
	// VenueDEX routes to the DEX aggregator adapter.
	VenueDEX Venue = "dex"
)

// Side is the trade direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalizes a side string. It wraps ErrUnknownEnum for anything
// other than buy or sell.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return "", fmt.Errorf("domain: side %q: %w", s, ErrUnknownEnum)
	}
}

// TransactionIntent is a fully validated trade instruction flowing through
// the pipeline. Quantity is in base-asset units and ExpectedPrice in quote
// units per base unit; both are positive finite numbers by construction.
type TransactionIntent struct {
	ID            string    `json:"id"`
	Venue         Venue     `json:"venue"`
	Quantity      float64   `json:"quantity"`
	ExpectedPrice float64   `json:"expected_price"`
	Pair          string    `json:"pair"`
	Side          Side      `json:"side"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Notional is the quote-asset value of the intent at its expected price.
func (t TransactionIntent) Notional() float64 {
	return t.Quantity * t.ExpectedPrice
}

// Symbol is the CEX trading symbol for the intent's pair, quoted in USDT.
func (t TransactionIntent) Symbol() string {
	return strings.ToUpper(t.Pair) + "USDT"
}
