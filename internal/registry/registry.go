// Package registry holds the per-chain token address tables used by the DEX
// execution path: common token addresses, the per-chain quote-asset fallback,
// the native→wrapped symbol alias table, and per-token decimals.
//
// A Registry is read-only after construction; concurrent pipeline passes
// share it without locking.
package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jchenga/signalbot/internal/domain"
)

// quoteSymbol is the quote asset every pair trades against.
const quoteSymbol = "USDT"

// defaultDecimals applies to any token without an explicit decimals entry.
const defaultDecimals = 18

// chainTokens maps chain id → common token symbol → address.
var chainTokens = map[int]map[string]string{
	1: { // Ethereum mainnet
		"WETH": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"DAI":  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		"WBTC": "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599",
	},
	137: { // Polygon
		"WMATIC": "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
		"WETH":   "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619",
		"USDC":   "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		"USDT":   "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
		"DAI":    "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063",
	},
	42161: { // Arbitrum
		"WETH": "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
		"USDC": "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		"USDT": "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
		"ARB":  "0x912CE59144191C1204E64559FE8253a0e49E6548",
	},
	10: { // Optimism
		"WETH": "0x4200000000000000000000000000000000000006",
		"USDC": "0x7F5c764cBc14f9669B88837ca1490cCa17c31607",
		"USDT": "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58",
		"OP":   "0x4200000000000000000000000000000000000042",
	},
	8453: { // Base
		"WETH": "0x4200000000000000000000000000000000000006",
		"USDC": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	},
}

// quoteFallback maps chain id → USDT address, used when the common-token
// table for a chain has no USDT entry.
var quoteFallback = map[int]string{
	1:     "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	137:   "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
	42161: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
	10:    "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58",
	8453:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
}

// aliases maps a native or unwrapped symbol to its wrapped form. The alias
// is applied only when the wrapped symbol actually exists in the chain's
// token table.
var aliases = map[string]string{
	"ETH":   "WETH",
	"BTC":   "WBTC",
	"MATIC": "WMATIC",
	"AVAX":  "WAVAX",
	"BNB":   "WBNB",
}

// tokenDecimals lists tokens that deviate from the 18-decimal default.
var tokenDecimals = map[string]int{
	"USDT": 6,
	"USDC": 6,
	"WBTC": 8,
}

// chainNames enumerates the chains the aggregator supports.
var chainNames = map[int]string{
	1:     "Ethereum Mainnet",
	137:   "Polygon",
	42161: "Arbitrum",
	10:    "Optimism",
	8453:  "Base",
	56:    "BSC",
	43114: "Avalanche",
	250:   "Fantom",
	100:   "Gnosis",
}

// Token is a resolved registry entry.
type Token struct {
	Symbol   string
	Address  common.Address
	Decimals int
}

// Registry resolves token symbols to addresses for one configured chain.
type Registry struct {
	chainID int
	tokens  map[string]common.Address
	quote   Token
}

// New builds a Registry for the given chain id. It fails when the chain has
// no token table and no quote-asset fallback.
func New(chainID int) (*Registry, error) {
	raw, ok := chainTokens[chainID]
	fallback, fbOK := quoteFallback[chainID]
	if !ok && !fbOK {
		return nil, fmt.Errorf("registry: unsupported chain %d", chainID)
	}

	tokens := make(map[string]common.Address, len(raw)+1)
	for sym, addr := range raw {
		tokens[sym] = common.HexToAddress(addr)
	}
	if _, ok := tokens[quoteSymbol]; !ok && fbOK {
		tokens[quoteSymbol] = common.HexToAddress(fallback)
	}

	quoteAddr, ok := tokens[quoteSymbol]
	if !ok {
		return nil, fmt.Errorf("registry: chain %d has no %s address", chainID, quoteSymbol)
	}

	return &Registry{
		chainID: chainID,
		tokens:  tokens,
		quote: Token{
			Symbol:   quoteSymbol,
			Address:  quoteAddr,
			Decimals: decimalsFor(quoteSymbol),
		},
	}, nil
}

// ChainID returns the configured chain id.
func (r *Registry) ChainID() int { return r.chainID }

// QuoteAsset returns the quote-asset token for the chain.
func (r *Registry) QuoteAsset() Token { return r.quote }

// Resolve maps a traded symbol to its on-chain token, applying the
// native→wrapped alias where the wrapped form exists on this chain. A symbol
// with no mapping fails fast with domain.ErrMissingTokenMapping rather than
// degrading into a bad aggregator request.
func (r *Registry) Resolve(symbol string) (Token, error) {
	resolved := symbol
	if wrapped, ok := aliases[symbol]; ok {
		if _, present := r.tokens[wrapped]; present {
			resolved = wrapped
		}
	}

	addr, ok := r.tokens[resolved]
	if !ok {
		return Token{}, fmt.Errorf("registry: %s (as %s) on chain %d: %w",
			symbol, resolved, r.chainID, domain.ErrMissingTokenMapping)
	}

	return Token{
		Symbol:   resolved,
		Address:  addr,
		Decimals: decimalsFor(resolved),
	}, nil
}

// SupportedChains returns the chain id → name table.
func SupportedChains() map[int]string {
	out := make(map[int]string, len(chainNames))
	for id, name := range chainNames {
		out[id] = name
	}
	return out
}

func decimalsFor(symbol string) int {
	if d, ok := tokenDecimals[symbol]; ok {
		return d
	}
	return defaultDecimals
}
