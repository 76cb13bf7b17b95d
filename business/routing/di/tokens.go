// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/fd1az/dex-router/business/routing/app"
	"github.com/fd1az/dex-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	RouteOptimizer  = di.NewToken[*app.Optimizer]("routing.Optimizer")
	SplitCalculator = di.NewToken[*app.SplitCalculator]("routing.SplitCalculator")
)

// Helper functions for type-safe access
func GetRouteOptimizer(c di.ServiceRegistry) *app.Optimizer {
	return di.GetToken(c, RouteOptimizer)
}

func GetSplitCalculator(c di.ServiceRegistry) *app.SplitCalculator {
	return di.GetToken(c, SplitCalculator)
}
