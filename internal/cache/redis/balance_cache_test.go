package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchenga/signalbot/internal/domain"
)

type fakeBalanceSource struct {
	balances map[string]float64
	err      error
	calls    int
}

func (f *fakeBalanceSource) Balance(_ context.Context, asset string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[asset], nil
}

type fakeBalanceCache struct {
	entries map[string]float64
	getErr  error
	setErr  error
}

func (f *fakeBalanceCache) GetBalance(_ context.Context, asset string) (float64, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	v, ok := f.entries[asset]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeBalanceCache) SetBalance(_ context.Context, asset string, free float64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[asset] = free
	return nil
}

func TestCachedSourceHit(t *testing.T) {
	source := &fakeBalanceSource{balances: map[string]float64{"ETH": 9}}
	cache := &fakeBalanceCache{entries: map[string]float64{"ETH": 2.5}}
	s := NewCachedBalanceSource(source, cache)

	free, err := s.Balance(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, 2.5, free)
	assert.Zero(t, source.calls, "cache hit must not touch the live source")
}

func TestCachedSourceMissPopulates(t *testing.T) {
	source := &fakeBalanceSource{balances: map[string]float64{"ETH": 9}}
	cache := &fakeBalanceCache{entries: map[string]float64{}}
	s := NewCachedBalanceSource(source, cache)

	free, err := s.Balance(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, 9.0, free)
	assert.Equal(t, 9.0, cache.entries["ETH"])
}

func TestCachedSourceCacheErrorFallsThrough(t *testing.T) {
	source := &fakeBalanceSource{balances: map[string]float64{"USDT": 100}}
	cache := &fakeBalanceCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	s := NewCachedBalanceSource(source, cache)

	free, err := s.Balance(context.Background(), "USDT")
	require.NoError(t, err, "cache errors must not surface")
	assert.Equal(t, 100.0, free)
}

func TestCachedSourcePropagatesSourceError(t *testing.T) {
	sourceErr := errors.New("exchange unreachable")
	source := &fakeBalanceSource{err: sourceErr}
	cache := &fakeBalanceCache{entries: map[string]float64{}}
	s := NewCachedBalanceSource(source, cache)

	_, err := s.Balance(context.Background(), "USDT")
	assert.ErrorIs(t, err, sourceErr)
}
