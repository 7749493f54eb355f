package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchenga/signalbot/internal/domain"
)

func TestSizerClampsOversizedPosition(t *testing.T) {
	// Portfolio: 10000 USDT + 1 ETH * 2000 = 12000. At ratio 0.1 the max
	// position value is 1200, so a 2 ETH buy (4000 notional) clamps to 0.6.
	sizer := NewPositionSizer(fixedBalances(map[string]float64{
		"USDT": 10_000,
		"ETH":  1,
	}), 0.1, testLogger())

	intent, warnings := sizer.Adjust(context.Background(), buyIntent(2, 2000))
	assert.Empty(t, warnings)
	assert.InDelta(t, 0.6, intent.Quantity, 1e-12)
}

func TestSizerLeavesSmallPositionAlone(t *testing.T) {
	sizer := NewPositionSizer(fixedBalances(map[string]float64{
		"USDT": 10_000,
		"ETH":  1,
	}), 0.1, testLogger())

	original := buyIntent(0.1, 2000)
	intent, warnings := sizer.Adjust(context.Background(), original)
	assert.Empty(t, warnings)
	assert.Equal(t, original.Quantity, intent.Quantity)
}

func TestSizerIdempotent(t *testing.T) {
	balances := fixedBalances(map[string]float64{
		"USDT": 10_000,
		"ETH":  1,
	})
	sizer := NewPositionSizer(balances, 0.1, testLogger())

	once, _ := sizer.Adjust(context.Background(), buyIntent(2, 2000))
	twice, _ := sizer.Adjust(context.Background(), once)
	assert.InDelta(t, once.Quantity, twice.Quantity, 1e-12)
}

func TestSizerOnlyShrinks(t *testing.T) {
	sizer := NewPositionSizer(fixedBalances(map[string]float64{
		"USDT": 1_000_000,
	}), 0.1, testLogger())

	original := buyIntent(0.5, 2000)
	intent, _ := sizer.Adjust(context.Background(), original)
	assert.Equal(t, original.Quantity, intent.Quantity,
		"a large portfolio must never grow the requested position")
}

func TestSizerFailsOpenOnLookupError(t *testing.T) {
	sizer := NewPositionSizer(failingBalances(errors.New("timeout")), 0.1, testLogger())

	original := buyIntent(2, 2000)
	intent, warnings := sizer.Adjust(context.Background(), original)
	assert.Equal(t, original.Quantity, intent.Quantity)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "could not run")
}

func TestSizerAppliesToSells(t *testing.T) {
	sizer := NewPositionSizer(fixedBalances(map[string]float64{
		"USDT": 10_000,
		"ETH":  1,
	}), 0.1, testLogger())

	intent := buyIntent(2, 2000)
	intent.Side = domain.SideSell
	adjusted, _ := sizer.Adjust(context.Background(), intent)
	assert.InDelta(t, 0.6, adjusted.Quantity, 1e-12)
}
