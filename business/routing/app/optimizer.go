// Package app implements route ranking and split order calculation.
package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/routing/domain"
	quotes "github.com/fd1az/dex-router/business/quotes/domain"
)

// sourceReliability rates aggregators by historical performance.
var sourceReliability = map[string]decimal.Decimal{
	"1inch":    decimal.RequireFromString("0.95"),
	"Paraswap": decimal.RequireFromString("0.92"),
	"0x":       decimal.RequireFromString("0.90"),
	"Uniswap":  decimal.RequireFromString("0.98"),
	"Curve":    decimal.RequireFromString("0.97"),
	"Balancer": decimal.RequireFromString("0.93"),
}

var defaultReliability = decimal.RequireFromString("0.85")

var hundred = decimal.NewFromInt(100)

// Optimizer ranks quotes by a composite score built from effective
// output, gas efficiency, source reliability and freshness.
// It is pure apart from the clock, which is injectable for tests.
type Optimizer struct {
	now func() time.Time
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) OptimizerOption {
	return func(o *Optimizer) { o.now = now }
}

// NewOptimizer creates a route optimizer.
func NewOptimizer(opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RankQuotes scores every quote against the set and returns analyses
// sorted best first. Ties on score break toward lower gas cost, then
// source name, so the ordering is deterministic.
func (o *Optimizer) RankQuotes(qs []*quotes.NormalizedQuote) []*domain.RouteAnalysis {
	if len(qs) == 0 {
		return nil
	}

	now := o.now()

	analyses := make([]*domain.RouteAnalysis, 0, len(qs))
	for _, q := range qs {
		analyses = append(analyses, &domain.RouteAnalysis{
			Quote: q,
			Score: o.score(q, qs, now),
		})
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		if c := analyses[i].Score.Cmp(analyses[j].Score); c != 0 {
			return c > 0
		}
		if c := analyses[i].Quote.GasCostUSD.Cmp(analyses[j].Quote.GasCostUSD); c != 0 {
			return c < 0
		}
		return analyses[i].Quote.Source < analyses[j].Quote.Source
	})

	worstOutput := analyses[0].Quote.OutputAmount
	for _, a := range analyses[1:] {
		if a.Quote.OutputAmount.LessThan(worstOutput) {
			worstOutput = a.Quote.OutputAmount
		}
	}

	for i, a := range analyses {
		a.Rank = i + 1
		a.SavingsVsWorst = a.Quote.OutputAmount.Sub(worstOutput)
		if worstOutput.IsPositive() {
			a.SavingsPct = a.SavingsVsWorst.Div(worstOutput).Mul(hundred)
		}
		a.Recommendation = routeRecommendation(a.Score, i == 0)
	}

	return analyses
}

// CompareRoutes ranks the quotes and adds the spread summary across the
// whole set. Returns nil for an empty quote list.
func (o *Optimizer) CompareRoutes(qs []*quotes.NormalizedQuote) *domain.RouteComparison {
	analyses := o.RankQuotes(qs)
	if len(analyses) == 0 {
		return nil
	}

	best := analyses[0]

	worstOutput := best.Quote.OutputAmount
	for _, a := range analyses {
		if a.Quote.OutputAmount.LessThan(worstOutput) {
			worstOutput = a.Quote.OutputAmount
		}
	}

	spread := decimal.Zero
	if worstOutput.IsPositive() {
		spread = best.Quote.OutputAmount.Sub(worstOutput).Div(worstOutput).Mul(hundred)
	}

	return &domain.RouteComparison{
		BestRoute:      best,
		AllRoutes:      analyses,
		TotalQuotes:    len(analyses),
		PriceSpreadPct: spread,
		Recommendation: spreadRecommendation(spread),
	}
}

// SizeRecommendation suggests an execution style for the trade size.
func (o *Optimizer) SizeRecommendation(tradeSizeUSD decimal.Decimal) string {
	switch {
	case tradeSizeUSD.LessThan(decimal.NewFromInt(1_000)):
		return "Small trade: Use direct quote. Gas optimization savings may not exceed complexity cost."
	case tradeSizeUSD.LessThan(decimal.NewFromInt(10_000)):
		return "Medium trade: Compare routes and consider multi-hop if savings exceed 0.3%."
	case tradeSizeUSD.LessThan(decimal.NewFromInt(100_000)):
		return "Large trade: Analyze split orders across 2-3 venues. Multi-hop routes likely beneficial."
	default:
		return "Whale trade: Use split orders + MEV protection. Consider private transactions or OTC."
	}
}

// score builds the composite 0-100 score:
//
//	output (0-60)      effective rate interpolated across the set
//	gas (0-20)         inverted interpolation of gas cost
//	reliability (0-10) source rating x 10
//	freshness (0-10)   all or nothing on expiry
func (o *Optimizer) score(q *quotes.NormalizedQuote, all []*quotes.NormalizedQuote, now time.Time) decimal.Decimal {
	minRate, maxRate := all[0].EffectiveRate, all[0].EffectiveRate
	minGas, maxGas := all[0].GasCostUSD, all[0].GasCostUSD
	for _, other := range all[1:] {
		if other.EffectiveRate.LessThan(minRate) {
			minRate = other.EffectiveRate
		}
		if other.EffectiveRate.GreaterThan(maxRate) {
			maxRate = other.EffectiveRate
		}
		if other.GasCostUSD.LessThan(minGas) {
			minGas = other.GasCostUSD
		}
		if other.GasCostUSD.GreaterThan(maxGas) {
			maxGas = other.GasCostUSD
		}
	}

	outputScore := decimal.NewFromInt(60)
	if rateRange := maxRate.Sub(minRate); rateRange.IsPositive() {
		outputScore = q.EffectiveRate.Sub(minRate).Div(rateRange).Mul(decimal.NewFromInt(60))
	}

	gasScore := decimal.NewFromInt(20)
	if gasRange := maxGas.Sub(minGas); gasRange.IsPositive() {
		gasScore = decimal.NewFromInt(1).
			Sub(q.GasCostUSD.Sub(minGas).Div(gasRange)).
			Mul(decimal.NewFromInt(20))
	}

	reliability, ok := sourceReliability[q.Source]
	if !ok {
		reliability = defaultReliability
	}
	reliabilityScore := reliability.Mul(decimal.NewFromInt(10))

	freshnessScore := decimal.NewFromInt(10)
	if q.IsExpired(now) {
		freshnessScore = decimal.Zero
	}

	return outputScore.Add(gasScore).Add(reliabilityScore).Add(freshnessScore)
}

func routeRecommendation(score decimal.Decimal, isBest bool) string {
	if isBest {
		switch {
		case score.GreaterThanOrEqual(decimal.NewFromInt(90)):
			return "BEST CHOICE - Optimal price and efficiency"
		case score.GreaterThanOrEqual(decimal.NewFromInt(80)):
			return "RECOMMENDED - Strong overall value"
		default:
			return "BEST AVAILABLE - Consider waiting for better rates"
		}
	}

	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(85)):
		return "Good alternative with competitive pricing"
	case score.GreaterThanOrEqual(decimal.NewFromInt(70)):
		return "Acceptable but not optimal"
	default:
		return "Not recommended - significantly worse than best"
	}
}

func spreadRecommendation(spread decimal.Decimal) string {
	switch {
	case spread.LessThan(decimal.RequireFromString("0.1")):
		return "All sources offer similar rates. Choose based on preference."
	case spread.LessThan(decimal.NewFromInt(1)):
		return fmt.Sprintf("Best route saves %s%%. Worth optimizing.", spread.StringFixed(2))
	default:
		return fmt.Sprintf("Significant spread (%s%%). Use best route.", spread.StringFixed(2))
	}
}
