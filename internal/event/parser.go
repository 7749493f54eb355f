// Package event parses raw trade signals into typed transaction intents.
//
// The wire format is an ASCII string of the form
//
//	|venue|quantity|expectedPrice|pair|side|
//
// with the leading/trailing delimiter optional. Parsing is all-or-nothing:
// on any violation no partial intent is produced.
package event

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jchenga/signalbot/internal/domain"
)

// weiScale converts uint256 contract fields (18 fixed decimals) to floats.
var weiScale = new(big.Float).SetFloat64(1e18)

// Parse converts a raw delimited event string into a TransactionIntent.
//
// Error kinds: domain.ErrEventFormat for a wrong field count,
// domain.ErrUnknownEnum for an unrecognized venue or side, and
// domain.ErrNumericField for quantity/price values that are unparseable or
// not positive finite numbers.
func Parse(raw string) (domain.TransactionIntent, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "|")
	parts := strings.Split(trimmed, "|")
	if len(parts) != 5 {
		return domain.TransactionIntent{}, fmt.Errorf("event: expected 5 fields, got %d: %w", len(parts), domain.ErrEventFormat)
	}

	venue, err := parseVenue(parts[0])
	if err != nil {
		return domain.TransactionIntent{}, err
	}

	quantity, err := parsePositive("quantity", parts[1])
	if err != nil {
		return domain.TransactionIntent{}, err
	}

	price, err := parsePositive("expectedPrice", parts[2])
	if err != nil {
		return domain.TransactionIntent{}, err
	}

	side, err := parseSide(parts[4])
	if err != nil {
		return domain.TransactionIntent{}, err
	}

	return domain.TransactionIntent{
		ID:            uuid.New().String(),
		Venue:         venue,
		Quantity:      quantity,
		ExpectedPrice: price,
		Pair:          strings.ToUpper(strings.TrimSpace(parts[3])),
		Side:          side,
		ReceivedAt:    time.Now().UTC(),
	}, nil
}

// ContractSignal is the normalized payload of an on-chain TradingSignal
// event. Quantity and ExpectedPrice are raw uint256 values scaled by 1e18.
type ContractSignal struct {
	ExType        string
	Quantity      *big.Int
	ExpectedPrice *big.Int
	Pair          string
	Side          string
}

// Wire renders the signal in the pipe-delimited wire format consumed by
// Parse.
func (s ContractSignal) Wire() string {
	qty, _ := new(big.Float).Quo(new(big.Float).SetInt(s.Quantity), weiScale).Float64()
	price, _ := new(big.Float).Quo(new(big.Float).SetInt(s.ExpectedPrice), weiScale).Float64()
	return fmt.Sprintf("|%s|%s|%s|%s|%s|",
		s.ExType,
		strconv.FormatFloat(qty, 'f', -1, 64),
		strconv.FormatFloat(price, 'f', -1, 64),
		s.Pair,
		s.Side,
	)
}

// FromContractEvent converts a contract signal into a TransactionIntent by
// rendering the wire format and running it through Parse, so both input
// paths share one validation boundary.
func FromContractEvent(s ContractSignal) (domain.TransactionIntent, error) {
	return Parse(s.Wire())
}

func parseVenue(s string) (domain.Venue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cex":
		return domain.VenueCEX, nil
	case "dex":
		return domain.VenueDEX, nil
	default:
		return "", fmt.Errorf("event: venue %q: %w", s, domain.ErrUnknownEnum)
	}
}

func parseSide(s string) (domain.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return domain.SideBuy, nil
	case "sell":
		return domain.SideSell, nil
	default:
		return "", fmt.Errorf("event: side %q: %w", s, domain.ErrUnknownEnum)
	}
}

func parsePositive(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("event: %s %q: %w", field, s, domain.ErrNumericField)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("event: %s must be a positive finite number, got %v: %w", field, v, domain.ErrNumericField)
	}
	return v, nil
}
