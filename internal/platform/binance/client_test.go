package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchenga/signalbot/internal/crypto"
	"github.com/jchenga/signalbot/internal/domain"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	signer := crypto.NewRequestSigner(testAPIKey, testAPISecret)
	return NewClient(Config{BaseURL: srv.URL}, signer)
}

// verifySignature recomputes the HMAC over the raw query up to the signature
// parameter and checks it matches.
func verifySignature(t *testing.T, r *http.Request) url.Values {
	t.Helper()
	rawQuery := r.URL.RawQuery
	idx := strings.LastIndex(rawQuery, "&signature=")
	require.Positive(t, idx, "query must end with a signature parameter")

	payload := rawQuery[:idx]
	mac := hmac.New(sha256.New, []byte(testAPISecret))
	mac.Write([]byte(payload))
	want := hex.EncodeToString(mac.Sum(nil))

	values := r.URL.Query()
	assert.Equal(t, want, values.Get("signature"))
	assert.NotEmpty(t, values.Get("timestamp"))
	return values
}

func TestMarketBuyQuoteRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, orderEndpoint, r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get("X-MBX-APIKEY"))

		values := verifySignature(t, r)
		assert.Equal(t, "ETHUSDT", values.Get("symbol"))
		assert.Equal(t, "BUY", values.Get("side"))
		assert.Equal(t, "MARKET", values.Get("type"))
		assert.Equal(t, "1000", values.Get("quoteOrderQty"))
		assert.Empty(t, values.Get("quantity"))

		w.Write([]byte(`{"symbol":"ETHUSDT","orderId":42,"clientOrderId":"abc","status":"FILLED","executedQty":"0.5","cummulativeQuoteQty":"1000"}`))
	})

	ack, err := client.MarketBuyQuote(context.Background(), "ethusdt", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ack.OrderID)
	assert.Equal(t, "FILLED", ack.Status)
	assert.Equal(t, 0.5, ack.ExecutedQty)
	assert.Equal(t, 1000.0, ack.CummQuoteQty)
}

func TestMarketSellRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		values := verifySignature(t, r)
		assert.Equal(t, "SELL", values.Get("side"))
		assert.Equal(t, "MARKET", values.Get("type"))
		assert.Equal(t, "0.25", values.Get("quantity"))

		w.Write([]byte(`{"symbol":"ETHUSDT","orderId":7,"status":"FILLED","executedQty":"0.25","cummulativeQuoteQty":"500"}`))
	})

	ack, err := client.MarketSell(context.Background(), "ETHUSDT", 0.25)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ack.OrderID)
}

func TestRecvWindowIncluded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "60000", r.URL.Query().Get("recvWindow"))
		w.Write([]byte(`{"balances":[]}`))
	}))
	defer srv.Close()

	signer := crypto.NewRequestSigner(testAPIKey, testAPISecret)
	client := NewClient(Config{BaseURL: srv.URL, RecvWindowMs: 60_000}, signer)

	_, err := client.GetAccount(context.Background())
	require.NoError(t, err)
}

func TestBalanceScan(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, accountEndpoint, r.URL.Path)
		w.Write([]byte(`{"balances":[
			{"asset":"USDT","free":"1500.5","locked":"0"},
			{"asset":"ETH","free":"2.25","locked":"0.1"}
		]}`))
	})

	free, err := client.Balance(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, 2.25, free)

	// Absent asset yields zero, not an error.
	free, err = client.Balance(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.Zero(t, free)
}

func TestUnauthorizedWrapsSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":-2014,"msg":"API-key format invalid."}`))
	})

	_, err := client.GetAccount(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAPIErrorCarriesCodeAndMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1013,"msg":"Filter failure: LOT_SIZE"}`))
	})

	_, err := client.MarketSell(context.Background(), "ETHUSDT", 0.0000001)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, int64(-1013), apiErr.Code)
	assert.Contains(t, apiErr.Msg, "LOT_SIZE")
}

func TestCancelOrderRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		values := verifySignature(t, r)
		assert.Equal(t, "ETHUSDT", values.Get("symbol"))
		assert.Equal(t, "42", values.Get("orderId"))
		w.Write([]byte(`{"symbol":"ETHUSDT","orderId":42,"status":"CANCELED"}`))
	})

	require.NoError(t, client.CancelOrder(context.Background(), "ETHUSDT", 42))
}

func TestOpenOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, openOrdersEndpoint, r.URL.Path)
		w.Write([]byte(`[
			{"symbol":"ETHUSDT","orderId":1,"status":"NEW","executedQty":"0","cummulativeQuoteQty":"0"},
			{"symbol":"ETHUSDT","orderId":2,"status":"PARTIALLY_FILLED","executedQty":"0.1","cummulativeQuoteQty":"200"}
		]`))
	})

	orders, err := client.OpenOrders(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[1].OrderID)
}

func TestOrderStatusRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, orderEndpoint, r.URL.Path)
		values := verifySignature(t, r)
		assert.Equal(t, "ETHUSDT", values.Get("symbol"))
		assert.Equal(t, "42", values.Get("orderId"))
		w.Write([]byte(`{"symbol":"ETHUSDT","orderId":42,"status":"PARTIALLY_FILLED","executedQty":"0.3","cummulativeQuoteQty":"600"}`))
	})

	ack, err := client.OrderStatus(context.Background(), "ethusdt", 42)
	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_FILLED", ack.Status)
	assert.Equal(t, 0.3, ack.ExecutedQty)
}

func TestOrderHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, allOrdersEndpoint, r.URL.Path)
		values := verifySignature(t, r)
		assert.Equal(t, "ETHUSDT", values.Get("symbol"))
		assert.Equal(t, "50", values.Get("limit"))
		w.Write([]byte(`[
			{"symbol":"ETHUSDT","orderId":1,"status":"FILLED","executedQty":"0.5","cummulativeQuoteQty":"1000"},
			{"symbol":"ETHUSDT","orderId":2,"status":"CANCELED","executedQty":"0","cummulativeQuoteQty":"0"}
		]`))
	})

	orders, err := client.OrderHistory(context.Background(), "ETHUSDT", 50)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "CANCELED", orders[1].Status)
}

func TestOrderHistoryOmitsZeroLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		values := verifySignature(t, r)
		assert.Empty(t, values.Get("limit"))
		w.Write([]byte(`[]`))
	})

	orders, err := client.OrderHistory(context.Background(), "ETHUSDT", 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func exchangeInfoHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, exchangeInfoEndpoint, r.URL.Path)
		assert.Empty(t, r.Header.Get("X-MBX-APIKEY"), "exchange info is a public endpoint")
		w.Write([]byte(`{"symbols":[{"symbol":"ETHUSDT","status":"TRADING","filters":[
			{"filterType":"LOT_SIZE","minQty":"0.001","maxQty":"10000","stepSize":"0.001"},
			{"filterType":"PRICE_FILTER","minPrice":"0.01","maxPrice":"1000000","tickSize":"0.01"}
		]}]}`))
	}
}

func TestValidateOrderPasses(t *testing.T) {
	client := newTestClient(t, exchangeInfoHandler(t))
	err := client.ValidateOrder(context.Background(), "ETHUSDT", 0.005, 1999.99)
	assert.NoError(t, err)
}

func TestValidateOrderStepViolation(t *testing.T) {
	client := newTestClient(t, exchangeInfoHandler(t))
	err := client.ValidateOrder(context.Background(), "ETHUSDT", 0.0015, 2000)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Contains(t, err.Error(), "LOT_SIZE")
}

func TestValidateOrderBelowMinimum(t *testing.T) {
	client := newTestClient(t, exchangeInfoHandler(t))
	err := client.ValidateOrder(context.Background(), "ETHUSDT", 0.0001, 2000)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestValidateOrderSkipsPriceWhenZero(t *testing.T) {
	client := newTestClient(t, exchangeInfoHandler(t))
	err := client.ValidateOrder(context.Background(), "ETHUSDT", 0.005, 0)
	assert.NoError(t, err)
}

func TestValidateOrderToleratesFloatNoise(t *testing.T) {
	client := newTestClient(t, exchangeInfoHandler(t))
	// 0.1+0.2 style representation error must not trip the step check.
	err := client.ValidateOrder(context.Background(), "ETHUSDT", 0.30000000000000004, 2000)
	assert.NoError(t, err)
}
