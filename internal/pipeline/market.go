package pipeline

import (
	"fmt"

	"github.com/jchenga/signalbot/internal/domain"
)

// MarketConditionGate is the final sanity check before routing. It is the
// extension seam for future volatility and spread rules; any added rule must
// stay synchronous and free of external I/O.
type MarketConditionGate struct{}

// NewMarketConditionGate creates a MarketConditionGate.
func NewMarketConditionGate() *MarketConditionGate {
	return &MarketConditionGate{}
}

// Check applies the current market-condition rules.
func (g *MarketConditionGate) Check(intent domain.TransactionIntent) Decision {
	if intent.ExpectedPrice <= 0 {
		return Reject(fmt.Sprintf("expected price must be positive, got %v", intent.ExpectedPrice))
	}
	return Accept()
}
