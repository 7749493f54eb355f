package binance

import "fmt"

// accountInfo is the subset of the account endpoint response the client
// consumes.
type accountInfo struct {
	Balances []balanceEntry `json:"balances"`
}

type balanceEntry struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// exchangeInfo is the trading-rules response for a symbol query.
type exchangeInfo struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol  string         `json:"symbol"`
	Status  string         `json:"status"`
	Filters []symbolFilter `json:"filters"`
}

// symbolFilter is a single exchange filter. Only LOT_SIZE and PRICE_FILTER
// fields are populated for the filter types the client validates against.
type symbolFilter struct {
	FilterType string `json:"filterType"`
	MinQty     string `json:"minQty"`
	MaxQty     string `json:"maxQty"`
	StepSize   string `json:"stepSize"`
	MinPrice   string `json:"minPrice"`
	MaxPrice   string `json:"maxPrice"`
	TickSize   string `json:"tickSize"`
}

// APIError is a non-2xx response from the exchange, carrying the HTTP status
// and the exchange's error payload.
type APIError struct {
	Status int
	Code   int64
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: HTTP %d (code %d): %s", e.Status, e.Code, e.Msg)
}
