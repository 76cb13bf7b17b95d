// Package quotes implements the quote aggregation bounded context.
package quotes

import (
	"context"
	"time"

	"github.com/fd1az/dex-router/business/market/di"
	"github.com/fd1az/dex-router/business/quotes/app"
	quotesDI "github.com/fd1az/dex-router/business/quotes/di"
	"github.com/fd1az/dex-router/business/quotes/infra/aggregators"
	"github.com/fd1az/dex-router/internal/asset"
	"github.com/fd1az/dex-router/internal/config"
	internalDI "github.com/fd1az/dex-router/internal/di"
	"github.com/fd1az/dex-router/internal/logger"
	"github.com/fd1az/dex-router/internal/monolith"
)

// Module implements the quotes bounded context.
type Module struct{}

// RegisterServices registers all quote services with the DI container.
func (m *Module) RegisterServices(c internalDI.Container) error {
	// Register aggregator sources - private dependency
	internalDI.RegisterToken(c, quotesDI.Sources, func(sr internalDI.ServiceRegistry) []app.AggregatorSource {
		cfg := sr.Get("config").(*config.Config)

		sources := make([]app.AggregatorSource, 0, 3)

		if cfg.Sources.OneInch.Enabled {
			src, err := aggregators.NewOneInch(sourceConfig(cfg.Sources.OneInch))
			if err != nil {
				panic("failed to create 1inch source: " + err.Error())
			}
			sources = append(sources, src)
		}

		if cfg.Sources.Paraswap.Enabled {
			src, err := aggregators.NewParaswap(sourceConfig(cfg.Sources.Paraswap))
			if err != nil {
				panic("failed to create paraswap source: " + err.Error())
			}
			sources = append(sources, src)
		}

		if cfg.Sources.ZeroX.Enabled {
			src, err := aggregators.NewZeroX(sourceConfig(cfg.Sources.ZeroX))
			if err != nil {
				panic("failed to create 0x source: " + err.Error())
			}
			sources = append(sources, src)
		}

		return sources
	})

	// Register Fetcher (public - exposed to other modules)
	internalDI.RegisterToken(c, quotesDI.QuoteFetcher, func(sr internalDI.ServiceRegistry) *app.Fetcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		assets := sr.Get("assetRegistry").(*asset.Registry)

		fetcher, err := app.NewFetcher(
			quotesDI.GetSources(sr),
			di.GetMarketService(sr),
			assets,
			app.FetcherConfig{
				SourceTimeout: cfg.Router.QuoteTimeout,
				QuoteValidity: time.Duration(cfg.Router.QuoteValiditySec) * time.Second,
			},
			log,
		)
		if err != nil {
			panic("failed to create quote fetcher: " + err.Error())
		}
		return fetcher
	})

	return nil
}

// Startup initializes the quotes module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	fetcher := quotesDI.GetQuoteFetcher(mono.Services())
	mono.Logger().Info(ctx, "quotes module started", "sources", fetcher.Sources())
	return nil
}

func sourceConfig(sc config.SourceConfig) aggregators.SourceConfig {
	return aggregators.SourceConfig{
		BaseURL:        sc.BaseURL,
		APIKey:         sc.APIKey,
		RequestsPerSec: sc.RequestsPerSec,
	}
}
