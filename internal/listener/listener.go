// Package listener polls an EVM node for TradingSignal contract events and
// feeds them to the pipeline as wire-format trade signals. It is a pure
// producer: decoding or handling failures are logged and skipped so the
// polling loop survives any single bad event.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/jchenga/signalbot/internal/event"
)

// tradingSignalABI is the ABI fragment of the contract's TradingSignal
// event. Quantity and expectedPrice are 18-fixed-decimal uint256 values.
const tradingSignalABI = `[{"anonymous":false,"inputs":[` +
	`{"indexed":false,"name":"exType","type":"string"},` +
	`{"indexed":false,"name":"quantity","type":"uint256"},` +
	`{"indexed":false,"name":"expectedPrice","type":"uint256"},` +
	`{"indexed":false,"name":"pair","type":"string"},` +
	`{"indexed":false,"name":"side","type":"string"}],` +
	`"name":"TradingSignal","type":"event"}]`

// Handler consumes one wire-format trade signal.
type Handler func(ctx context.Context, raw string)

// Config holds the listener parameters.
type Config struct {
	RPCURL          string
	ContractAddress string
	PollInterval    time.Duration
	ErrorBackoff    time.Duration
}

// Listener polls for TradingSignal logs and forwards them to the handler.
type Listener struct {
	client    *ethclient.Client
	contract  common.Address
	signalABI abi.ABI
	handle    Handler
	poll      time.Duration
	backoff   time.Duration
	logger    *slog.Logger

	lastBlock uint64
}

// New dials the RPC endpoint and prepares the listener. The first poll
// starts from the current head; historical events are not replayed.
func New(ctx context.Context, cfg Config, handle Handler, logger *slog.Logger) (*Listener, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("listener: dial %s: %w", cfg.RPCURL, err)
	}

	parsed, err := abi.JSON(strings.NewReader(tradingSignalABI))
	if err != nil {
		return nil, fmt.Errorf("listener: parse ABI: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 5 * time.Second
	}

	return &Listener{
		client:    client,
		contract:  common.HexToAddress(cfg.ContractAddress),
		signalABI: parsed,
		handle:    handle,
		poll:      cfg.PollInterval,
		backoff:   cfg.ErrorBackoff,
		logger:    logger.With(slog.String("component", "contract_listener")),
	}, nil
}

// Run polls for new TradingSignal logs until ctx is cancelled. Cancellation
// is cooperative at poll granularity; an in-flight RPC call is not
// interrupted mid-request.
func (l *Listener) Run(ctx context.Context) error {
	defer l.client.Close()

	head, err := l.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("listener: fetch head: %w", err)
	}
	l.lastBlock = head

	l.logger.InfoContext(ctx, "contract listener started",
		slog.String("contract", l.contract.Hex()),
		slog.Uint64("from_block", head),
	)

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("contract listener stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := l.pollOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.WarnContext(ctx, "poll failed, backing off",
					slog.String("error", err.Error()),
				)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(l.backoff):
				}
			}
		}
	}
}

func (l *Listener) pollOnce(ctx context.Context) error {
	head, err := l.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("fetch head: %w", err)
	}
	if head <= l.lastBlock {
		return nil
	}

	eventID := l.signalABI.Events["TradingSignal"].ID
	logs, err := l.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(l.lastBlock + 1),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: []common.Address{l.contract},
		Topics:    [][]common.Hash{{eventID}},
	})
	if err != nil {
		return fmt.Errorf("filter logs: %w", err)
	}
	l.lastBlock = head

	for _, lg := range logs {
		signal, err := l.decode(lg.Data)
		if err != nil {
			l.logger.WarnContext(ctx, "skipping undecodable log",
				slog.String("tx", lg.TxHash.Hex()),
				slog.String("error", err.Error()),
			)
			continue
		}
		l.handle(ctx, signal.Wire())
	}
	return nil
}

// decode unpacks the non-indexed TradingSignal arguments from log data.
func (l *Listener) decode(data []byte) (event.ContractSignal, error) {
	values, err := l.signalABI.Events["TradingSignal"].Inputs.Unpack(data)
	if err != nil {
		return event.ContractSignal{}, fmt.Errorf("unpack: %w", err)
	}
	if len(values) != 5 {
		return event.ContractSignal{}, fmt.Errorf("expected 5 event arguments, got %d", len(values))
	}

	exType, ok := values[0].(string)
	if !ok {
		return event.ContractSignal{}, fmt.Errorf("exType is %T, want string", values[0])
	}
	quantity, ok := values[1].(*big.Int)
	if !ok {
		return event.ContractSignal{}, fmt.Errorf("quantity is %T, want *big.Int", values[1])
	}
	price, ok := values[2].(*big.Int)
	if !ok {
		return event.ContractSignal{}, fmt.Errorf("expectedPrice is %T, want *big.Int", values[2])
	}
	pair, ok := values[3].(string)
	if !ok {
		return event.ContractSignal{}, fmt.Errorf("pair is %T, want string", values[3])
	}
	side, ok := values[4].(string)
	if !ok {
		return event.ContractSignal{}, fmt.Errorf("side is %T, want string", values[4])
	}

	return event.ContractSignal{
		ExType:        exType,
		Quantity:      quantity,
		ExpectedPrice: price,
		Pair:          pair,
		Side:          side,
	}, nil
}
