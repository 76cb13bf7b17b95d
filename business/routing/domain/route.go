// Package domain contains the route ranking and split order types.
package domain

import (
	"github.com/shopspring/decimal"

	quotes "github.com/fd1az/dex-router/business/quotes/domain"
)

// RouteAnalysis scores a single quote against its peers.
type RouteAnalysis struct {
	Quote          *quotes.NormalizedQuote
	Rank           int             // 1 = best
	Score          decimal.Decimal // 0-100, higher is better
	Recommendation string
	SavingsVsWorst decimal.Decimal // output units saved vs the worst quote
	SavingsPct     decimal.Decimal
}

// RouteComparison is the ranked view over all quotes for a request.
type RouteComparison struct {
	BestRoute      *RouteAnalysis
	AllRoutes      []*RouteAnalysis
	TotalQuotes    int
	PriceSpreadPct decimal.Decimal // best vs worst output, in percent
	Recommendation string
}
