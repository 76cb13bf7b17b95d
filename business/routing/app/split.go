package app

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/routing/domain"
	quotes "github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
)

// impactEpsilon keeps the inverse-impact weight finite for zero-impact quotes.
var impactEpsilon = decimal.RequireFromString("0.01")

// SplitConfig holds the split order thresholds.
type SplitConfig struct {
	MinTradeSizeUSD  decimal.Decimal // below this, never split
	MaxVenues        int
	MinAllocationPct decimal.Decimal // non-final venues under this are dropped
}

// DefaultSplitConfig returns the standard thresholds.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		MinTradeSizeUSD:  decimal.NewFromInt(5_000),
		MaxVenues:        4,
		MinAllocationPct: decimal.NewFromInt(10),
	}
}

// SplitCalculator allocates a large order across venues proportionally
// to inverse price impact, then checks whether the split actually beats
// single-venue execution after the extra gas.
type SplitCalculator struct {
	config SplitConfig
}

// NewSplitCalculator creates a split calculator.
func NewSplitCalculator(cfg SplitConfig) *SplitCalculator {
	if cfg.MaxVenues <= 0 {
		cfg.MaxVenues = DefaultSplitConfig().MaxVenues
	}
	return &SplitCalculator{config: cfg}
}

// CalculateSplit computes the optimal allocation of totalAmount across
// the quoted venues. nativePriceUSD values the input token so the size
// threshold applies in dollars.
//
// Invariants on the result: allocation percentages sum to exactly 100
// and allocation input amounts sum to exactly totalAmount, because the
// final venue receives the exact remainder rather than its own rounded
// share.
func (c *SplitCalculator) CalculateSplit(
	qs []*quotes.NormalizedQuote,
	totalAmount decimal.Decimal,
	nativePriceUSD decimal.Decimal,
) (*domain.SplitRecommendation, error) {
	if len(qs) == 0 {
		return nil, apperror.New(apperror.CodeSplitCalculationError,
			apperror.WithContext("no quotes to split across"))
	}

	tradeSizeUSD := totalAmount.Mul(nativePriceUSD)

	if tradeSizeUSD.LessThan(c.config.MinTradeSizeUSD) {
		return c.singleVenue(bestByEffectiveRate(qs), totalAmount), nil
	}

	allocations := c.optimize(qs, totalAmount)
	if len(allocations) == 0 {
		return c.singleVenue(bestByEffectiveRate(qs), totalAmount), nil
	}

	totalOutput := decimal.Zero
	totalGas := decimal.Zero
	for _, a := range allocations {
		totalOutput = totalOutput.Add(a.ExpectedOutput)
		totalGas = totalGas.Add(a.GasCostUSD)
	}

	bestSingle := bestByEffectiveRate(qs)
	singleOutput := bestSingle.OutputAmount

	improvement := totalOutput.Sub(singleOutput)
	improvementPct := decimal.Zero
	if singleOutput.IsPositive() {
		improvementPct = improvement.Div(singleOutput).Mul(hundred)
	}

	extraGas := totalGas.Sub(bestSingle.GasCostUSD)
	netBenefit := improvement.Sub(extraGas)
	beneficial := netBenefit.IsPositive()

	var rec string
	if beneficial {
		rec = fmt.Sprintf("Split order saves $%s (%s%% improvement after gas)",
			netBenefit.StringFixed(2), improvementPct.StringFixed(2))
	} else {
		rec = fmt.Sprintf("Single venue preferred. Split would cost extra $%s in gas overhead.",
			netBenefit.Neg().StringFixed(2))
	}

	return &domain.SplitRecommendation{
		Allocations:       allocations,
		TotalInput:        totalAmount,
		TotalOutput:       totalOutput,
		SingleVenueOutput: singleOutput,
		ImprovementAmount: improvement,
		ImprovementPct:    improvementPct,
		TotalGasCostUSD:   totalGas,
		NetBenefit:        netBenefit,
		Recommendation:    rec,
		IsSplitBeneficial: beneficial,
	}, nil
}

// optimize weights the top venues by inverse price impact. Non-final
// venues under the minimum allocation are dropped; the final venue
// takes the remainder so the sums close exactly.
func (c *SplitCalculator) optimize(qs []*quotes.NormalizedQuote, totalAmount decimal.Decimal) []domain.SplitAllocation {
	venues := make([]*quotes.NormalizedQuote, len(qs))
	copy(venues, qs)
	sort.SliceStable(venues, func(i, j int) bool {
		return venues[i].EffectiveRate.GreaterThan(venues[j].EffectiveRate)
	})

	if len(venues) > c.config.MaxVenues {
		venues = venues[:c.config.MaxVenues]
	}

	if len(venues) == 1 {
		return []domain.SplitAllocation{
			c.allocate(venues[0], hundred, totalAmount),
		}
	}

	totalWeight := decimal.Zero
	weights := make([]decimal.Decimal, len(venues))
	for i, q := range venues {
		weights[i] = decimal.NewFromInt(1).Div(q.PriceImpactPct.Add(impactEpsilon))
		totalWeight = totalWeight.Add(weights[i])
	}

	allocations := make([]domain.SplitAllocation, 0, len(venues))
	allocatedPct := decimal.Zero
	allocatedAmount := decimal.Zero

	for i, q := range venues {
		last := i == len(venues)-1

		pct := weights[i].Div(totalWeight).Mul(hundred)
		if !last && pct.LessThan(c.config.MinAllocationPct) {
			continue
		}

		amount := totalAmount.Mul(pct).Div(hundred)
		if last {
			// Exact remainder keeps the percentage and amount sums closed.
			pct = hundred.Sub(allocatedPct)
			amount = totalAmount.Sub(allocatedAmount)
		}

		if !amount.IsPositive() {
			continue
		}

		allocations = append(allocations, c.allocate(q, pct, amount))
		allocatedPct = allocatedPct.Add(pct)
		allocatedAmount = allocatedAmount.Add(amount)
	}

	return allocations
}

// allocate builds one venue's allocation. Output scales linearly with
// the allocated fraction; price impact scales with its square root,
// since smaller fills move constant-product pools sub-linearly.
func (c *SplitCalculator) allocate(q *quotes.NormalizedQuote, pct, amount decimal.Decimal) domain.SplitAllocation {
	fraction := decimal.Zero
	if q.InputAmount.IsPositive() {
		fraction = amount.Div(q.InputAmount)
	}

	expectedOutput := q.OutputAmount.Mul(fraction)

	impactScale := decimal.NewFromFloat(math.Sqrt(fraction.InexactFloat64()))
	adjustedImpact := q.PriceImpactPct.Mul(impactScale)

	return domain.SplitAllocation{
		Source:         q.Source,
		Percentage:     pct,
		InputAmount:    amount,
		ExpectedOutput: expectedOutput,
		PriceImpactPct: adjustedImpact,
		GasCostUSD:     q.GasCostUSD,
	}
}

func (c *SplitCalculator) singleVenue(q *quotes.NormalizedQuote, amount decimal.Decimal) *domain.SplitRecommendation {
	allocation := c.allocate(q, hundred, amount)

	return &domain.SplitRecommendation{
		Allocations:       []domain.SplitAllocation{allocation},
		TotalInput:        amount,
		TotalOutput:       q.OutputAmount,
		SingleVenueOutput: q.OutputAmount,
		ImprovementAmount: decimal.Zero,
		ImprovementPct:    decimal.Zero,
		TotalGasCostUSD:   q.GasCostUSD,
		NetBenefit:        decimal.Zero,
		Recommendation:    "Single venue is optimal for this trade size.",
		IsSplitBeneficial: false,
	}
}

func bestByEffectiveRate(qs []*quotes.NormalizedQuote) *quotes.NormalizedQuote {
	best := qs[0]
	for _, q := range qs[1:] {
		if q.EffectiveRate.GreaterThan(best.EffectiveRate) {
			best = q
		}
	}
	return best
}
