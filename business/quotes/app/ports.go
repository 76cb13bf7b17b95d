// Package app contains application services and port definitions for the quotes context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
)

// AggregatorSource is a single quote provider (1inch, Paraswap, 0x).
type AggregatorSource interface {
	// Name returns the canonical source name used in quotes and scoring.
	Name() string

	// SupportsChain reports whether the source can quote on the chain.
	SupportsChain(chainID uint64) bool

	// FetchQuote fetches and normalizes one quote. Implementations own
	// their rate limiting; the fetcher owns the per-call timeout.
	FetchQuote(ctx context.Context, call domain.QuoteCall, mkt domain.MarketContext) (*domain.NormalizedQuote, error)
}

// MarketData provides the market inputs normalization needs.
// The market module implements this; static fallbacks keep it total.
type MarketData interface {
	NativePriceUSD(ctx context.Context) decimal.Decimal
	GasPriceGwei(ctx context.Context) decimal.Decimal
}
