// Package di contains dependency injection tokens for the MEV context.
package di

import (
	"github.com/fd1az/dex-router/business/mev/app"
	"github.com/fd1az/dex-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	RiskAssessor = di.NewToken[*app.Assessor]("mev.Assessor")
)

// Helper functions for type-safe access
func GetRiskAssessor(c di.ServiceRegistry) *app.Assessor {
	return di.GetToken(c, RiskAssessor)
}
