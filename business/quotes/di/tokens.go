// Package di contains dependency injection tokens for the quotes context.
package di

import (
	"github.com/fd1az/dex-router/business/quotes/app"
	"github.com/fd1az/dex-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteFetcher = di.NewToken[*app.Fetcher]("quotes.Fetcher")
)

// Private dependency tokens - internal to quotes module
var (
	Sources = di.NewToken[[]app.AggregatorSource]("quotes:sources")
)

// Helper functions for type-safe access
func GetQuoteFetcher(c di.ServiceRegistry) *app.Fetcher {
	return di.GetToken(c, QuoteFetcher)
}

func GetSources(c di.ServiceRegistry) []app.AggregatorSource {
	return di.GetToken(c, Sources)
}
