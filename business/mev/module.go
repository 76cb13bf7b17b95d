// Package mev implements the MEV risk assessment bounded context.
package mev

import (
	"context"

	"github.com/fd1az/dex-router/business/mev/app"
	mevDI "github.com/fd1az/dex-router/business/mev/di"
	internalDI "github.com/fd1az/dex-router/internal/di"
	"github.com/fd1az/dex-router/internal/monolith"
)

// Module implements the MEV bounded context.
type Module struct{}

// RegisterServices registers all MEV services with the DI container.
func (m *Module) RegisterServices(c internalDI.Container) error {
	// Register RiskAssessor (public - exposed to other modules)
	internalDI.RegisterToken(c, mevDI.RiskAssessor, func(sr internalDI.ServiceRegistry) *app.Assessor {
		return app.NewAssessor()
	})

	return nil
}

// Startup initializes the MEV module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "mev module started")
	return nil
}
