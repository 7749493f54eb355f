// Package feed streams live market data from the exchange websocket into
// the price cache. The feed is a consumer-side surface only: the trading
// pipeline never blocks on it.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jchenga/signalbot/internal/domain"
)

// DefaultWSURL is the production market-data stream root.
const DefaultWSURL = "wss://stream.binance.com:9443"

const reconnectDelay = 5 * time.Second

// DepthFeed subscribes to partial book depth streams for a set of symbols
// and writes the best bid/ask of every update into the price cache. It
// reconnects with a delay on disconnect and stops when the context is
// cancelled.
type DepthFeed struct {
	wsURL   string
	symbols []string
	prices  domain.PriceCache
	logger  *slog.Logger
}

// NewDepthFeed creates a DepthFeed for the given symbols (e.g. "ETHUSDT").
// wsURL falls back to DefaultWSURL when empty.
func NewDepthFeed(wsURL string, symbols []string, prices domain.PriceCache, logger *slog.Logger) *DepthFeed {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &DepthFeed{
		wsURL:   wsURL,
		symbols: symbols,
		prices:  prices,
		logger:  logger.With(slog.String("component", "depth_feed")),
	}
}

// depthUpdate is one partial-depth stream message. Bids and asks are
// [price, quantity] string pairs, best level first.
type depthUpdate struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// combinedMessage wraps a depth update on the combined stream endpoint.
type combinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// Run connects to the combined depth stream and pumps updates into the
// price cache until ctx is cancelled.
func (f *DepthFeed) Run(ctx context.Context) error {
	if len(f.symbols) == 0 {
		f.logger.Info("no symbols configured, feed idle")
		return nil
	}

	streams := make([]string, 0, len(f.symbols))
	for _, s := range f.symbols {
		streams = append(streams, strings.ToLower(s)+"@depth5@100ms")
	}
	url := f.wsURL + "/stream?streams=" + strings.Join(streams, "/")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := f.runConnection(ctx, url)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("depth stream disconnected, reconnecting",
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *DepthFeed) runConnection(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", url, err)
	}
	defer conn.Close()

	// Close the connection when the context is cancelled so the blocked
	// ReadMessage returns. The watcher must also exit when the connection
	// drops on its own, or every reconnect cycle strands a goroutine.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	f.logger.Info("depth stream connected", slog.Int("symbols", len(f.symbols)))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", err)
		}

		var wrapper combinedMessage
		if err := json.Unmarshal(msg, &wrapper); err != nil {
			f.logger.Warn("skipping malformed stream message", slog.String("error", err.Error()))
			continue
		}

		symbol, ok := symbolFromStream(wrapper.Stream)
		if !ok {
			continue
		}

		var update depthUpdate
		if err := json.Unmarshal(wrapper.Data, &update); err != nil {
			f.logger.Warn("skipping malformed depth update", slog.String("error", err.Error()))
			continue
		}

		bid, ask, ok := topOfBook(update)
		if !ok {
			continue
		}
		if err := f.prices.SetPrice(ctx, symbol, bid, ask, time.Now().UTC()); err != nil {
			f.logger.Warn("price cache write failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
}

// symbolFromStream extracts the uppercase symbol from a stream name like
// "ethusdt@depth5@100ms".
func symbolFromStream(stream string) (string, bool) {
	name, _, found := strings.Cut(stream, "@")
	if !found || name == "" {
		return "", false
	}
	return strings.ToUpper(name), true
}

// topOfBook returns the best bid and ask of a depth update.
func topOfBook(u depthUpdate) (bid, ask float64, ok bool) {
	if len(u.Bids) == 0 || len(u.Asks) == 0 || len(u.Bids[0]) < 2 || len(u.Asks[0]) < 2 {
		return 0, 0, false
	}
	bid, err := strconv.ParseFloat(u.Bids[0][0], 64)
	if err != nil {
		return 0, 0, false
	}
	ask, err = strconv.ParseFloat(u.Asks[0][0], 64)
	if err != nil {
		return 0, 0, false
	}
	return bid, ask, true
}
