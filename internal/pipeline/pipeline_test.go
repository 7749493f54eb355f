package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchenga/signalbot/internal/domain"
)

func newTestPipeline(balances domain.BalanceSource, exec VenueExecutor) *Pipeline {
	router := NewRouter()
	router.Register(domain.VenueCEX, exec)
	router.Register(domain.VenueDEX, exec)

	return New(
		NewRiskGate(balances, testRiskConfig(), testLogger()),
		NewPositionSizer(balances, 0.1, testLogger()),
		NewMarketConditionGate(),
		router,
		testLogger(),
	)
}

func TestHandleEventExecutes(t *testing.T) {
	balances := fixedBalances(map[string]float64{"USDT": 100_000})
	var executed *domain.TransactionIntent
	exec := executorFunc(func(_ context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error) {
		executed = &intent
		return domain.ExecutionReport{CexOrder: &domain.OrderAck{OrderID: 99, Status: "FILLED"}}, nil
	})

	result := newTestPipeline(balances, exec).HandleEvent(context.Background(), "|cex|1|2000|ETH|buy|")

	require.True(t, result.Ok())
	assert.Equal(t, domain.OutcomeExecuted, result.Outcome)
	assert.Equal(t, domain.StageExecute, result.Stage)
	require.NotNil(t, result.CexOrder)
	assert.Equal(t, int64(99), result.CexOrder.OrderID)
	require.NotNil(t, executed)
	assert.Equal(t, "ETH", executed.Pair)
}

func TestHandleEventParseFailureNeverPanics(t *testing.T) {
	exec := executorFunc(func(_ context.Context, _ domain.TransactionIntent) (domain.ExecutionReport, error) {
		t.Fatal("executor must not run for malformed input")
		return domain.ExecutionReport{}, nil
	})
	p := newTestPipeline(fixedBalances(nil), exec)

	result := p.HandleEvent(context.Background(), "garbage")
	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Equal(t, domain.StageParse, result.Stage)
	assert.NotEmpty(t, result.Reason)
	assert.Nil(t, result.Intent)
}

func TestProcessRejectedByRisk(t *testing.T) {
	balances := fixedBalances(map[string]float64{"USDT": 1})
	exec := executorFunc(func(_ context.Context, _ domain.TransactionIntent) (domain.ExecutionReport, error) {
		t.Fatal("executor must not run for a rejected intent")
		return domain.ExecutionReport{}, nil
	})

	result := newTestPipeline(balances, exec).Process(context.Background(), buyIntent(1, 2000))
	assert.Equal(t, domain.OutcomeRejected, result.Outcome)
	assert.Equal(t, domain.StageRisk, result.Stage)
	assert.Contains(t, result.Reason, "insufficient balance")
}

func TestProcessCarriesFailOpenWarnings(t *testing.T) {
	balances := failingBalances(errors.New("exchange down"))
	exec := executorFunc(func(_ context.Context, _ domain.TransactionIntent) (domain.ExecutionReport, error) {
		return domain.ExecutionReport{}, nil
	})

	result := newTestPipeline(balances, exec).Process(context.Background(), buyIntent(1, 2000))

	// Risk and sizing both failed open: the intent executed, but the result
	// carries the degraded-check warnings.
	assert.Equal(t, domain.OutcomeExecuted, result.Outcome)
	require.Len(t, result.Warnings, 2)
	for _, w := range result.Warnings {
		assert.Contains(t, w, "could not run")
	}
}

func TestProcessExecutionFailure(t *testing.T) {
	execErr := errors.New("venue exploded")
	exec := executorFunc(func(_ context.Context, _ domain.TransactionIntent) (domain.ExecutionReport, error) {
		return domain.ExecutionReport{}, execErr
	})

	result := newTestPipeline(fixedBalances(map[string]float64{"USDT": 100_000}), exec).
		Process(context.Background(), buyIntent(1, 2000))

	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Equal(t, domain.StageExecute, result.Stage)
	assert.Contains(t, result.Reason, "venue exploded")
}

func TestProcessRoutingFailureStage(t *testing.T) {
	balances := fixedBalances(map[string]float64{"USDT": 100_000})
	p := New(
		NewRiskGate(balances, testRiskConfig(), testLogger()),
		NewPositionSizer(balances, 0.1, testLogger()),
		NewMarketConditionGate(),
		NewRouter(), // no executors registered
		testLogger(),
	)

	result := p.Process(context.Background(), buyIntent(1, 2000))
	assert.Equal(t, domain.OutcomeFailed, result.Outcome)
	assert.Equal(t, domain.StageRoute, result.Stage)
}

func TestProcessAppliesSizingBeforeExecution(t *testing.T) {
	// Portfolio 12000, ratio 0.1 → max position 1200 → clamp 2 ETH to 0.6.
	balances := fixedBalances(map[string]float64{"USDT": 10_000, "ETH": 1})
	var got float64
	exec := executorFunc(func(_ context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error) {
		got = intent.Quantity
		return domain.ExecutionReport{}, nil
	})

	result := newTestPipeline(balances, exec).Process(context.Background(), buyIntent(2, 2000))
	require.Equal(t, domain.OutcomeExecuted, result.Outcome)
	assert.InDelta(t, 0.6, got, 1e-12)
	require.NotNil(t, result.Intent)
	assert.InDelta(t, 0.6, result.Intent.Quantity, 1e-12)
}
