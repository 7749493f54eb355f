package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReconnectCyclesReleaseWatcher drives the connection through many
// disconnect cycles against a server that drops immediately after the
// upgrade, and checks the cancellation watcher exits with each connection
// instead of accumulating.
func TestReconnectCyclesReleaseWatcher(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	f := NewDepthFeed("", []string{"ETHUSDT"}, nil, slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := runtime.NumGoroutine()
	for i := 0; i < 25; i++ {
		require.Error(t, f.runConnection(ctx, url))
	}
	// Give exiting watchers a moment to be reaped.
	time.Sleep(100 * time.Millisecond)
	assert.Less(t, runtime.NumGoroutine(), before+10,
		"watcher goroutines must exit when the connection drops")
}

func TestSymbolFromStream(t *testing.T) {
	sym, ok := symbolFromStream("ethusdt@depth5@100ms")
	assert.True(t, ok)
	assert.Equal(t, "ETHUSDT", sym)

	_, ok = symbolFromStream("noseparator")
	assert.False(t, ok)

	_, ok = symbolFromStream("@depth5")
	assert.False(t, ok)
}

func TestTopOfBook(t *testing.T) {
	bid, ask, ok := topOfBook(depthUpdate{
		Bids: [][]string{{"1999.50", "3.2"}, {"1999.00", "8.0"}},
		Asks: [][]string{{"2000.10", "1.1"}},
	})
	assert.True(t, ok)
	assert.Equal(t, 1999.50, bid)
	assert.Equal(t, 2000.10, ask)
}

func TestTopOfBookEmptySides(t *testing.T) {
	_, _, ok := topOfBook(depthUpdate{Asks: [][]string{{"2000", "1"}}})
	assert.False(t, ok)

	_, _, ok = topOfBook(depthUpdate{
		Bids: [][]string{{"bad", "1"}},
		Asks: [][]string{{"2000", "1"}},
	})
	assert.False(t, ok)
}
