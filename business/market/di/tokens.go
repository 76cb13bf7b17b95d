// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/dex-router/business/market/app"
	"github.com/fd1az/dex-router/business/market/infra/binance"
	"github.com/fd1az/dex-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.Service]("market.Service")
)

// Private dependency tokens - internal to market module
var (
	PriceSource   = di.NewToken[app.PriceSource]("market:priceSource")
	GasSource     = di.NewToken[app.GasSource]("market:gasSource")
	PriceStreamer = di.NewToken[*binance.Streamer]("market:priceStreamer")
)

// Helper functions for type-safe access
func GetMarketService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, MarketService)
}

func GetPriceSource(c di.ServiceRegistry) app.PriceSource {
	return di.GetToken(c, PriceSource)
}

func GetGasSource(c di.ServiceRegistry) app.GasSource {
	return di.GetToken(c, GasSource)
}

func GetPriceStreamer(c di.ServiceRegistry) *binance.Streamer {
	return di.GetToken(c, PriceStreamer)
}
