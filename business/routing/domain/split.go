package domain

import "github.com/shopspring/decimal"

// SplitAllocation is one venue's share of a split order.
type SplitAllocation struct {
	Source         string
	Percentage     decimal.Decimal // 0-100
	InputAmount    decimal.Decimal
	ExpectedOutput decimal.Decimal
	PriceImpactPct decimal.Decimal // adjusted for the partial fill
	GasCostUSD     decimal.Decimal
}

// SplitRecommendation compares executing across several venues against
// sending the whole order to the single best one.
type SplitRecommendation struct {
	Allocations       []SplitAllocation
	TotalInput        decimal.Decimal
	TotalOutput       decimal.Decimal
	SingleVenueOutput decimal.Decimal
	ImprovementAmount decimal.Decimal
	ImprovementPct    decimal.Decimal
	TotalGasCostUSD   decimal.Decimal
	NetBenefit        decimal.Decimal // improvement minus extra gas
	Recommendation    string
	IsSplitBeneficial bool
}
