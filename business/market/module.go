// Package market implements the market data bounded context: native coin
// price and network gas price with static fallbacks.
package market

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/dex-router/business/market/app"
	marketDI "github.com/fd1az/dex-router/business/market/di"
	"github.com/fd1az/dex-router/business/market/infra/binance"
	"github.com/fd1az/dex-router/business/market/infra/ethereum"
	"github.com/fd1az/dex-router/internal/config"
	"github.com/fd1az/dex-router/internal/di"
	"github.com/fd1az/dex-router/internal/logger"
	"github.com/fd1az/dex-router/internal/monolith"
)

// Module implements the market data bounded context.
type Module struct {
	// Stream enables the Binance WebSocket price stream (watch mode).
	Stream bool
}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PriceSource (Binance REST) - private dependency
	di.RegisterToken(c, marketDI.PriceSource, func(sr di.ServiceRegistry) app.PriceSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := binance.NewHTTPClient(binance.HTTPClientConfig{
			BaseURL: cfg.Market.BinanceAPIURL,
			Symbol:  cfg.Market.NativeSymbol,
		}, log)
		if err != nil {
			panic("failed to create binance client: " + err.Error())
		}
		return client
	})

	// Register GasSource (Ethereum RPC) - private dependency
	di.RegisterToken(c, marketDI.GasSource, func(sr di.ServiceRegistry) app.GasSource {
		log := sr.Get("logger").(logger.LoggerInterface)

		var client *ethclient.Client
		if sr.Has("ethClient") {
			client = sr.Get("ethClient").(*ethclient.Client)
		}
		return ethereum.NewGasOracle(client, log)
	})

	// Register price streamer for watch mode - private dependency
	di.RegisterToken(c, marketDI.PriceStreamer, func(sr di.ServiceRegistry) *binance.Streamer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return binance.NewStreamer(binance.StreamConfig{
			BaseURL: cfg.Market.BinanceWSURL,
			Symbol:  cfg.Market.NativeSymbol,
		}, log)
	})

	// Register MarketService (public - exposed to other modules)
	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var price app.PriceSource
		if cfg.Market.BinanceAPIURL != "" {
			price = marketDI.GetPriceSource(sr)
		}

		var gas app.GasSource
		if cfg.Market.EthereumRPCURL != "" {
			gas = marketDI.GetGasSource(sr)
		}

		return app.NewService(
			price,
			gas,
			app.ServiceConfig{
				PriceTTL:           cfg.Market.PriceCacheTTL,
				GasTTL:             cfg.Market.GasCacheTTL,
				StaticNativePrice:  cfg.Market.StaticNativePriceDecimal(),
				StaticGasPriceGwei: cfg.Market.StaticGasPriceGweiDecimal(),
			},
			log,
		)
	})

	return nil
}

// Startup initializes the market module. The WebSocket stream only
// connects in watch mode; one-shot CLI runs use REST lookups.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	if m.Stream {
		streamer := marketDI.GetPriceStreamer(mono.Services())
		if err := streamer.Connect(ctx); err != nil {
			log.Warn(ctx, "price stream connection failed, REST fallback in use", "error", err)
		}
	}

	log.Info(ctx, "market module started", "stream", m.Stream)
	return nil
}
