// Package odos is the REST client for the Odos DEX aggregator's two-phase
// swap protocol: quote (/sor/quote/v2) then assemble (/sor/assemble).
package odos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jchenga/signalbot/internal/domain"
)

// DefaultBaseURL is the production aggregator API root.
const DefaultBaseURL = "https://api.odos.xyz"

const (
	quoteEndpoint    = "/sor/quote/v2"
	assembleEndpoint = "/sor/assemble"
)

// APIError is a non-2xx response from the aggregator, carrying the HTTP
// status and body text. An assemble failure that references a stale path is
// a hard error; a new quote must be requested from scratch.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("odos: HTTP %d: %s", e.Status, e.Body)
}

// Client calls the aggregator API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client. baseURL falls back to DefaultBaseURL when
// empty; apiKey is optional.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// QuoteRequest is the phase-1 request: one input token with an amount in
// minor units, one output token at full proportion.
type QuoteRequest struct {
	ChainID              int           `json:"chainId"`
	InputTokens          []InputToken  `json:"inputTokens"`
	OutputTokens         []OutputToken `json:"outputTokens"`
	SlippageLimitPercent float64       `json:"slippageLimitPercent"`
	UserAddr             string        `json:"userAddr"`
}

// InputToken carries a token address and the swap amount in the token's
// minor units, as a decimal string.
type InputToken struct {
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

// OutputToken carries a token address and its share of the output.
type OutputToken struct {
	TokenAddress string  `json:"tokenAddress"`
	Proportion   float64 `json:"proportion"`
}

// Quote requests a swap route. The returned path id is single-use and is
// consumed by Assemble.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (domain.Quote, error) {
	body, err := c.post(ctx, quoteEndpoint, req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("odos: quote: %w", err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return domain.Quote{}, fmt.Errorf("odos: decode quote: %v: %w", err, domain.ErrDecode)
	}
	if quote.PathID == "" {
		return domain.Quote{}, fmt.Errorf("odos: quote response missing pathId: %w", domain.ErrDecode)
	}
	return quote, nil
}

// assembleRequest is the phase-2 request body.
type assembleRequest struct {
	UserAddr string `json:"userAddr"`
	PathID   string `json:"pathId"`
	Simulate bool   `json:"simulate"`
}

// assembleResponse wraps the assembled transaction descriptor.
type assembleResponse struct {
	Transaction struct {
		To    string `json:"to"`
		Value string `json:"value"`
		Gas   int64  `json:"gas"`
		Data  string `json:"data"`
	} `json:"transaction"`
}

// Assemble exchanges a quoted path id for a transaction descriptor. The
// simulate flag is passed through as-is; the executor forces it true.
func (c *Client) Assemble(ctx context.Context, pathID, userAddr string, simulate bool) (domain.AssembledTransaction, error) {
	body, err := c.post(ctx, assembleEndpoint, assembleRequest{
		UserAddr: userAddr,
		PathID:   pathID,
		Simulate: simulate,
	})
	if err != nil {
		return domain.AssembledTransaction{}, fmt.Errorf("odos: assemble: %w", err)
	}

	var resp assembleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AssembledTransaction{}, fmt.Errorf("odos: decode assemble: %v: %w", err, domain.ErrDecode)
	}

	return domain.AssembledTransaction{
		To:       resp.Transaction.To,
		Value:    resp.Transaction.Value,
		Gas:      resp.Transaction.Gas,
		Data:     resp.Transaction.Data,
		Simulate: simulate,
		State:    domain.TxStateUnsigned,
		PathID:   pathID,
	}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
