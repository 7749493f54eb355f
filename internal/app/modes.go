package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jchenga/signalbot/internal/feed"
	"github.com/jchenga/signalbot/internal/listener"
	"github.com/jchenga/signalbot/internal/server"
	"github.com/jchenga/signalbot/internal/server/handler"
)

// ServiceMode runs the event-driven trading loop: the on-chain listener and
// the market-data feed, without the HTTP API.
func (a *App) ServiceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting service mode")

	g, ctx := errgroup.WithContext(ctx)
	if err := a.startEventSources(ctx, g, deps); err != nil {
		return fmt.Errorf("service mode: %w", err)
	}
	return g.Wait()
}

// ServerMode runs only the HTTP API; signals arrive via POST /api/signal.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the event sources and the HTTP API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	if err := a.startEventSources(ctx, g, deps); err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}
	return g.Wait()
}

// startEventSources adds the enabled signal producers to the errgroup: the
// contract listener feeding the pipeline and the depth feed filling the
// price cache.
func (a *App) startEventSources(ctx context.Context, g *errgroup.Group, deps *Dependencies) error {
	if a.cfg.Listener.Enabled {
		l, err := listener.New(ctx, listener.Config{
			RPCURL:          a.cfg.Listener.RpcURL,
			ContractAddress: a.cfg.Listener.ContractAddress,
			PollInterval:    a.cfg.Listener.PollInterval.Duration,
			ErrorBackoff:    a.cfg.Listener.ErrorBackoff.Duration,
		}, func(ctx context.Context, raw string) {
			deps.Pipeline.HandleEvent(ctx, raw)
		}, a.logger)
		if err != nil {
			return fmt.Errorf("start listener: %w", err)
		}
		g.Go(func() error {
			return l.Run(ctx)
		})
	} else {
		a.logger.InfoContext(ctx, "contract listener disabled")
	}

	if a.cfg.Feed.Enabled {
		if deps.PriceCache == nil {
			a.logger.WarnContext(ctx, "feed enabled but redis is not; depth feed disabled")
		} else {
			df := feed.NewDepthFeed(a.cfg.Feed.WsURL, a.cfg.Feed.Symbols, deps.PriceCache, a.logger)
			g.Go(func() error {
				return df.Run(ctx)
			})
		}
	}

	return nil
}

// startHTTPServer adds the HTTP server and its graceful-shutdown watcher to
// the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.ApiKey,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(a.cfg.Mode, a.logger),
		Signal:  handler.NewSignalHandler(deps.Pipeline, a.logger),
		Prices:  handler.NewPriceHandler(deps.PriceCache, a.logger),
		Balance: handler.NewBalanceHandler(deps.BalanceSource, a.logger),
		Orders:  handler.NewOrderHandler(deps.Binance, a.logger),
	}, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
