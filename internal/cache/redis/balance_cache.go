package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jchenga/signalbot/internal/domain"
)

// BalanceCache implements domain.BalanceCache using plain keys with a TTL.
// Each asset balance is stored at "balance:{ASSET}".
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBalanceCache creates a BalanceCache backed by the given Client. ttl
// bounds how stale a cached balance may get; risk decisions tolerate short
// staleness in exchange for not hitting the signed account endpoint on
// every intent.
func NewBalanceCache(c *Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{rdb: c.Underlying(), ttl: ttl}
}

func balanceKey(asset string) string {
	return "balance:" + strings.ToUpper(asset)
}

// SetBalance stores the free balance for an asset.
func (bc *BalanceCache) SetBalance(ctx context.Context, asset string, free float64) error {
	val := strconv.FormatFloat(free, 'f', -1, 64)
	if err := bc.rdb.Set(ctx, balanceKey(asset), val, bc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set balance %s: %w", asset, err)
	}
	return nil
}

// GetBalance retrieves the cached balance for an asset. It returns
// domain.ErrNotFound when the key is absent or expired.
func (bc *BalanceCache) GetBalance(ctx context.Context, asset string) (float64, error) {
	val, err := bc.rdb.Get(ctx, balanceKey(asset)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get balance %s: %w", asset, err)
	}

	free, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: parse balance %s: %w", asset, err)
	}
	return free, nil
}

// Compile-time interface check.
var _ domain.BalanceCache = (*BalanceCache)(nil)

// CachedBalanceSource layers a BalanceCache over a live balance source. A
// cache miss falls through to the source and populates the cache; cache
// errors are ignored in favor of the source so the pipeline keeps working
// when Redis is down.
type CachedBalanceSource struct {
	source domain.BalanceSource
	cache  domain.BalanceCache
}

// NewCachedBalanceSource wraps source with cache.
func NewCachedBalanceSource(source domain.BalanceSource, cache domain.BalanceCache) *CachedBalanceSource {
	return &CachedBalanceSource{source: source, cache: cache}
}

// Balance implements domain.BalanceSource.
func (s *CachedBalanceSource) Balance(ctx context.Context, asset string) (float64, error) {
	if free, err := s.cache.GetBalance(ctx, asset); err == nil {
		return free, nil
	}

	free, err := s.source.Balance(ctx, asset)
	if err != nil {
		return 0, err
	}
	_ = s.cache.SetBalance(ctx, asset, free)
	return free, nil
}

var _ domain.BalanceSource = (*CachedBalanceSource)(nil)
