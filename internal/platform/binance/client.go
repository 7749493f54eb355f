// Package binance is the signed REST client for Binance spot trading:
// market and limit orders, order management, account balances, and
// trading-rule validation.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jchenga/signalbot/internal/crypto"
	"github.com/jchenga/signalbot/internal/domain"
)

const (
	// MainnetURL is the production REST API root.
	MainnetURL = "https://api.binance.com"
	// TestnetURL is the spot testnet REST API root.
	TestnetURL = "https://testnet.binance.vision"

	orderEndpoint        = "/api/v3/order"
	accountEndpoint      = "/api/v3/account"
	exchangeInfoEndpoint = "/api/v3/exchangeInfo"
	openOrdersEndpoint   = "/api/v3/openOrders"
	allOrdersEndpoint    = "/api/v3/allOrders"
)

// Config holds the client construction parameters.
type Config struct {
	// BaseURL overrides the API root; used by tests. When empty the
	// testnet/mainnet root is chosen from Testnet.
	BaseURL      string
	Testnet      bool
	RecvWindowMs int64
}

// Client is the signed REST client. Credentials live in the signer, set once
// at construction. Safe for concurrent use.
type Client struct {
	baseURL    string
	signer     *crypto.RequestSigner
	recvWindow int64
	httpClient *http.Client
}

// NewClient creates a Client with the given credentials.
func NewClient(cfg Config, signer *crypto.RequestSigner) *Client {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Testnet {
			base = TestnetURL
		} else {
			base = MainnetURL
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		signer:     signer,
		recvWindow: cfg.RecvWindowMs,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doSigned issues an authenticated request. Parameters are encoded in
// insertion order; recvWindow (when configured), timestamp, and signature are
// appended last, and the signature covers everything before it. The query
// string rides in the URL for every method, matching the exchange contract
// for signed endpoints.
func (c *Client) doSigned(ctx context.Context, method, endpoint string, params *crypto.Params) ([]byte, error) {
	if params == nil {
		params = crypto.NewParams()
	}
	if c.recvWindow > 0 {
		params.Add("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	}
	query := c.signer.SignedQuery(params)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.signer.APIKey())

	return c.do(req)
}

// doPublic issues an unauthenticated request.
func (c *Client) doPublic(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("binance: HTTP %d: %s: %w", resp.StatusCode, string(body), domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Code int64  `json:"code"`
			Msg  string `json:"msg"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Code = payload.Code
			apiErr.Msg = payload.Msg
		} else {
			apiErr.Msg = string(body)
		}
		return nil, apiErr
	}

	return body, nil
}

// GetAccount fetches the full account information, including balances.
func (c *Client) GetAccount(ctx context.Context) ([]domain.AssetBalance, error) {
	body, err := c.doSigned(ctx, http.MethodGet, accountEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: get account: %w", err)
	}

	var info accountInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("binance: decode account: %v: %w", err, domain.ErrDecode)
	}

	out := make([]domain.AssetBalance, 0, len(info.Balances))
	for _, b := range info.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return nil, fmt.Errorf("binance: parse balance %s: %v: %w", b.Asset, err, domain.ErrDecode)
		}
		out = append(out, domain.AssetBalance{Asset: b.Asset, Free: free})
	}
	return out, nil
}

// Balance returns the free balance for one asset by scanning the account
// balances. An absent asset yields 0.0, not an error; callers treat zero as
// "no balance or unknown asset".
func (c *Client) Balance(ctx context.Context, asset string) (float64, error) {
	balances, err := c.GetAccount(ctx)
	if err != nil {
		return 0, err
	}
	upper := strings.ToUpper(asset)
	for _, b := range balances {
		if b.Asset == upper {
			return b.Free, nil
		}
	}
	return 0, nil
}

// MarketBuyQuote places a market buy order sized by quote-asset spend
// (quoteOrderQty) rather than base quantity, so the base amount is never
// rounded against the exchange step-size filter locally.
func (c *Client) MarketBuyQuote(ctx context.Context, symbol string, quoteOrderQty float64) (domain.OrderAck, error) {
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", "BUY").
		Add("type", "MARKET").
		Add("quoteOrderQty", formatFloat(quoteOrderQty))
	return c.placeOrder(ctx, params)
}

// MarketSell places a market sell order for a base quantity.
func (c *Client) MarketSell(ctx context.Context, symbol string, quantity float64) (domain.OrderAck, error) {
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", "SELL").
		Add("type", "MARKET").
		Add("quantity", formatFloat(quantity))
	return c.placeOrder(ctx, params)
}

// LimitOrder places a limit order with the given time-in-force (GTC, IOC,
// or FOK).
func (c *Client) LimitOrder(ctx context.Context, symbol string, side domain.Side, quantity, price float64, timeInForce string) (domain.OrderAck, error) {
	if timeInForce == "" {
		timeInForce = "GTC"
	}
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", strings.ToUpper(string(side))).
		Add("type", "LIMIT").
		Add("quantity", formatFloat(quantity)).
		Add("price", formatFloat(price)).
		Add("timeInForce", timeInForce)
	return c.placeOrder(ctx, params)
}

func (c *Client) placeOrder(ctx context.Context, params *crypto.Params) (domain.OrderAck, error) {
	body, err := c.doSigned(ctx, http.MethodPost, orderEndpoint, params)
	if err != nil {
		return domain.OrderAck{}, fmt.Errorf("binance: place order: %w", err)
	}

	var ack domain.OrderAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return domain.OrderAck{}, fmt.Errorf("binance: decode order ack: %v: %w", err, domain.ErrDecode)
	}
	return ack, nil
}

// CancelOrder cancels an order by exchange order id.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol)).
		Add("orderId", strconv.FormatInt(orderID, 10))
	if _, err := c.doSigned(ctx, http.MethodDelete, orderEndpoint, params); err != nil {
		return fmt.Errorf("binance: cancel order %d: %w", orderID, err)
	}
	return nil
}

// OrderStatus fetches the current state of an order.
func (c *Client) OrderStatus(ctx context.Context, symbol string, orderID int64) (domain.OrderAck, error) {
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol)).
		Add("orderId", strconv.FormatInt(orderID, 10))
	body, err := c.doSigned(ctx, http.MethodGet, orderEndpoint, params)
	if err != nil {
		return domain.OrderAck{}, fmt.Errorf("binance: order status %d: %w", orderID, err)
	}

	var ack domain.OrderAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return domain.OrderAck{}, fmt.Errorf("binance: decode order status: %v: %w", err, domain.ErrDecode)
	}
	return ack, nil
}

// OrderHistory lists all orders for a symbol, active and settled, oldest
// first. A positive limit caps the number of entries.
func (c *Client) OrderHistory(ctx context.Context, symbol string, limit int) ([]domain.OrderAck, error) {
	params := crypto.NewParams().
		Add("symbol", strings.ToUpper(symbol))
	if limit > 0 {
		params.Add("limit", strconv.Itoa(limit))
	}
	body, err := c.doSigned(ctx, http.MethodGet, allOrdersEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("binance: order history: %w", err)
	}

	var acks []domain.OrderAck
	if err := json.Unmarshal(body, &acks); err != nil {
		return nil, fmt.Errorf("binance: decode order history: %v: %w", err, domain.ErrDecode)
	}
	return acks, nil
}

// OpenOrders lists open orders, optionally filtered by symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]domain.OrderAck, error) {
	params := crypto.NewParams()
	if symbol != "" {
		params.Add("symbol", strings.ToUpper(symbol))
	}
	body, err := c.doSigned(ctx, http.MethodGet, openOrdersEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("binance: open orders: %w", err)
	}

	var acks []domain.OrderAck
	if err := json.Unmarshal(body, &acks); err != nil {
		return nil, fmt.Errorf("binance: decode open orders: %v: %w", err, domain.ErrDecode)
	}
	return acks, nil
}

// symbolInfo fetches the trading rules for one symbol from the public
// exchange-info endpoint.
func (c *Client) symbolInfo(ctx context.Context, symbol string) (symbolInfo, error) {
	body, err := c.doPublic(ctx, exchangeInfoEndpoint+"?symbol="+strings.ToUpper(symbol))
	if err != nil {
		return symbolInfo{}, fmt.Errorf("binance: exchange info: %w", err)
	}

	var info exchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return symbolInfo{}, fmt.Errorf("binance: decode exchange info: %v: %w", err, domain.ErrDecode)
	}

	upper := strings.ToUpper(symbol)
	for _, s := range info.Symbols {
		if s.Symbol == upper {
			return s, nil
		}
	}
	return symbolInfo{}, fmt.Errorf("binance: symbol %s not found: %w", symbol, domain.ErrNotFound)
}

// formatFloat renders a float parameter without exponent notation or
// trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
