// Package routing implements the route ranking and split order bounded context.
package routing

import (
	"context"

	"github.com/fd1az/dex-router/business/routing/app"
	routingDI "github.com/fd1az/dex-router/business/routing/di"
	"github.com/fd1az/dex-router/internal/config"
	internalDI "github.com/fd1az/dex-router/internal/di"
	"github.com/fd1az/dex-router/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers all routing services with the DI container.
func (m *Module) RegisterServices(c internalDI.Container) error {
	// Register RouteOptimizer (public - exposed to other modules)
	internalDI.RegisterToken(c, routingDI.RouteOptimizer, func(sr internalDI.ServiceRegistry) *app.Optimizer {
		return app.NewOptimizer()
	})

	// Register SplitCalculator (public - exposed to other modules)
	internalDI.RegisterToken(c, routingDI.SplitCalculator, func(sr internalDI.ServiceRegistry) *app.SplitCalculator {
		cfg := sr.Get("config").(*config.Config)

		return app.NewSplitCalculator(app.SplitConfig{
			MinTradeSizeUSD:  cfg.Split.MinTradeSizeDecimal(),
			MaxVenues:        cfg.Split.MaxVenues,
			MinAllocationPct: cfg.Split.MinAllocationDecimal(),
		})
	})

	return nil
}

// Startup initializes the routing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "routing module started")
	return nil
}
