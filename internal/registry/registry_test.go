package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchenga/signalbot/internal/domain"
)

func TestResolveDirect(t *testing.T) {
	r, err := New(1)
	require.NoError(t, err)

	tok, err := r.Resolve("WETH")
	require.NoError(t, err)
	assert.Equal(t, "WETH", tok.Symbol)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", tok.Address.Hex())
	assert.Equal(t, 18, tok.Decimals)
}

func TestResolveAlias(t *testing.T) {
	r, err := New(1)
	require.NoError(t, err)

	tok, err := r.Resolve("ETH")
	require.NoError(t, err)
	assert.Equal(t, "WETH", tok.Symbol)

	btc, err := r.Resolve("BTC")
	require.NoError(t, err)
	assert.Equal(t, "WBTC", btc.Symbol)
	assert.Equal(t, 8, btc.Decimals)
}

func TestResolveAliasNotAppliedWhenWrappedMissing(t *testing.T) {
	// Base has no WBTC entry, so BTC must fail fast rather than resolve.
	r, err := New(8453)
	require.NoError(t, err)

	_, err = r.Resolve("BTC")
	assert.ErrorIs(t, err, domain.ErrMissingTokenMapping)
}

func TestResolveMissingMapping(t *testing.T) {
	r, err := New(1)
	require.NoError(t, err)

	_, err = r.Resolve("DOGE")
	assert.ErrorIs(t, err, domain.ErrMissingTokenMapping)
}

func TestQuoteFallback(t *testing.T) {
	// Base's token table has no USDT entry; the fallback address fills it in.
	r, err := New(8453)
	require.NoError(t, err)

	quote := r.QuoteAsset()
	assert.Equal(t, "USDT", quote.Symbol)
	assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", quote.Address.Hex())
	assert.Equal(t, 6, quote.Decimals)
}

func TestUnsupportedChain(t *testing.T) {
	_, err := New(999999)
	assert.Error(t, err)
}

func TestStablecoinDecimals(t *testing.T) {
	r, err := New(137)
	require.NoError(t, err)

	usdc, err := r.Resolve("USDC")
	require.NoError(t, err)
	assert.Equal(t, 6, usdc.Decimals)

	dai, err := r.Resolve("DAI")
	require.NoError(t, err)
	assert.Equal(t, 18, dai.Decimals)
}

func TestSupportedChainsCopy(t *testing.T) {
	chains := SupportedChains()
	require.Contains(t, chains, 8453)

	chains[8453] = "mutated"
	assert.Equal(t, "Base", SupportedChains()[8453])
}
