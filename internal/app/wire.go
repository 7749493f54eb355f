package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchenga/signalbot/internal/cache/redis"
	"github.com/jchenga/signalbot/internal/config"
	"github.com/jchenga/signalbot/internal/crypto"
	"github.com/jchenga/signalbot/internal/domain"
	"github.com/jchenga/signalbot/internal/executor"
	"github.com/jchenga/signalbot/internal/pipeline"
	"github.com/jchenga/signalbot/internal/platform/binance"
	"github.com/jchenga/signalbot/internal/platform/odos"
	"github.com/jchenga/signalbot/internal/registry"
)

// Dependencies holds every wired subsystem the operating modes draw from.
// PriceCache is nil when Redis is disabled; consumers degrade gracefully.
type Dependencies struct {
	Pipeline      *pipeline.Pipeline
	Binance       *binance.Client
	BalanceSource domain.BalanceSource
	PriceCache    domain.PriceCache
}

// Wire builds the dependency graph from the configuration: secret loading,
// signed CEX client, DEX aggregator client, token registry, optional Redis
// caches, venue executors, and the pipeline. It returns the dependencies and
// a cleanup function that releases held connections.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	apiSecret, err := crypto.LoadSecret(crypto.SecretConfig{
		RawSecret:           cfg.Cex.ApiSecret,
		EncryptedSecretPath: cfg.Cex.EncryptedSecretPath,
		SecretPassword:      cfg.Cex.SecretPassword,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("wire: load cex secret: %w", err)
	}
	signer := crypto.NewRequestSigner(cfg.Cex.ApiKey, apiSecret)

	binanceClient := binance.NewClient(binance.Config{
		BaseURL:      cfg.Cex.BaseURL,
		Testnet:      cfg.Cex.Testnet,
		RecvWindowMs: cfg.Cex.RecvWindowMs,
	}, signer)

	odosClient := odos.NewClient(cfg.Dex.BaseURL, cfg.Dex.ApiKey)

	tokenRegistry, err := registry.New(cfg.Dex.ChainID)
	if err != nil {
		return nil, cleanup, fmt.Errorf("wire: token registry: %w", err)
	}

	// Balance lookups go straight to the exchange unless Redis is enabled,
	// in which case a short-TTL cache sits in front of it.
	var balances domain.BalanceSource = binanceClient
	var prices domain.PriceCache

	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close failed", slog.String("error", err.Error()))
			}
		})

		balanceCache := redis.NewBalanceCache(redisClient, cfg.Redis.BalanceTTL.Duration)
		balances = redis.NewCachedBalanceSource(binanceClient, balanceCache)
		prices = redis.NewPriceCache(redisClient)
	}

	riskGate := pipeline.NewRiskGate(balances, pipeline.RiskConfig{
		MinQuantity:      cfg.Risk.MinQuantity,
		MaxTradeNotional: cfg.Risk.MaxTradeNotional,
		PositionRatio:    cfg.Risk.PositionRatio,
	}, logger)
	sizer := pipeline.NewPositionSizer(balances, cfg.Risk.PositionRatio, logger)
	market := pipeline.NewMarketConditionGate()

	router := pipeline.NewRouter()
	router.Register(domain.VenueCEX, executor.NewCexExecutor(binanceClient, logger))
	router.Register(domain.VenueDEX, executor.NewDexExecutor(
		odosClient, tokenRegistry, cfg.Dex.WalletAddress, cfg.Dex.SlippagePercent, logger,
	))

	deps := &Dependencies{
		Pipeline:      pipeline.New(riskGate, sizer, market, router, logger),
		Binance:       binanceClient,
		BalanceSource: balances,
		PriceCache:    prices,
	}
	return deps, cleanup, nil
}
