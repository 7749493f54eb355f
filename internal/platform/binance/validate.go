package binance

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/jchenga/signalbot/internal/domain"
)

// stepEpsilon absorbs floating-point error when checking a value against a
// filter step.
const stepEpsilon = 1e-8

// ValidateOrder checks quantity (and price, when non-zero) against the
// symbol's exchange filters before submission. Step conformance uses
// (value - min) % step with an epsilon tolerance. A violation wraps
// domain.ErrInvalidOrder and names the offending filter.
func (c *Client) ValidateOrder(ctx context.Context, symbol string, quantity, price float64) error {
	info, err := c.symbolInfo(ctx, symbol)
	if err != nil {
		return err
	}

	for _, f := range info.Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			if err := checkFilter("LOT_SIZE", quantity, f.MinQty, f.MaxQty, f.StepSize); err != nil {
				return err
			}
		case "PRICE_FILTER":
			if price <= 0 {
				continue
			}
			if err := checkFilter("PRICE_FILTER", price, f.MinPrice, f.MaxPrice, f.TickSize); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFilter(name string, value float64, minStr, maxStr, stepStr string) error {
	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return fmt.Errorf("binance: %s min: %v: %w", name, err, domain.ErrDecode)
	}
	max, err := strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return fmt.Errorf("binance: %s max: %v: %w", name, err, domain.ErrDecode)
	}
	step, err := strconv.ParseFloat(stepStr, 64)
	if err != nil {
		return fmt.Errorf("binance: %s step: %v: %w", name, err, domain.ErrDecode)
	}

	if value < min {
		return fmt.Errorf("binance: %s: %v below minimum %v: %w", name, value, min, domain.ErrInvalidOrder)
	}
	if value > max {
		return fmt.Errorf("binance: %s: %v above maximum %v: %w", name, value, max, domain.ErrInvalidOrder)
	}
	if step > 0 {
		remainder := math.Mod(value-min, step)
		if remainder > stepEpsilon && step-remainder > stepEpsilon {
			return fmt.Errorf("binance: %s: %v does not match step %v: %w", name, value, step, domain.ErrInvalidOrder)
		}
	}
	return nil
}
