// Package app implements MEV risk scoring for DEX trades.
package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/mev/domain"
	quotes "github.com/fd1az/dex-router/business/quotes/domain"
)

// Factor weights. Trade size dominates because searchers filter the
// mempool by value first.
var (
	weightTradeSize       = decimal.RequireFromString("0.35")
	weightPriceImpact     = decimal.RequireFromString("0.25")
	weightRouteComplexity = decimal.RequireFromString("0.15")
	weightTokenVolatility = decimal.RequireFromString("0.15")
	weightLiquidityDepth  = decimal.RequireFromString("0.10")
)

var hundred = decimal.NewFromInt(100)

// protectionOptions is ordered strongest first; level lookups slice it.
var protectionOptions = []domain.ProtectionOption{
	{
		Name:          "Flashbots Protect",
		Description:   "Submit transaction to private mempool via Flashbots",
		Effectiveness: decimal.NewFromInt(95),
		TradeOff:      "Slightly slower confirmation, requires ETH mainnet",
		URL:           "https://docs.flashbots.net/flashbots-protect/overview",
	},
	{
		Name:          "CoW Swap",
		Description:   "Batch auction protocol with built-in MEV protection",
		Effectiveness: decimal.NewFromInt(90),
		TradeOff:      "May have longer settlement time, limited token pairs",
		URL:           "https://cow.fi/",
	},
	{
		Name:          "MEV Blocker",
		Description:   "RPC endpoint that routes to multiple builders",
		Effectiveness: decimal.NewFromInt(85),
		TradeOff:      "Requires custom RPC setup",
		URL:           "https://mevblocker.io/",
	},
	{
		Name:          "Private Transaction",
		Description:   "Send directly to block builders",
		Effectiveness: decimal.NewFromInt(80),
		TradeOff:      "May pay premium for inclusion",
	},
	{
		Name:          "Slippage Tightening",
		Description:   "Set tight slippage tolerance to reject sandwich",
		Effectiveness: decimal.NewFromInt(50),
		TradeOff:      "Trade may fail if market moves",
	},
}

// Assessor scores sandwich attack exposure for a trade. Pure given the
// same inputs, so a single instance is safe for concurrent callers.
type Assessor struct {
	volatilityMultiplier decimal.Decimal
}

// AssessorOption configures an Assessor.
type AssessorOption func(*Assessor)

// WithVolatilityMultiplier scales the token volatility factor for
// turbulent market conditions.
func WithVolatilityMultiplier(m decimal.Decimal) AssessorOption {
	return func(a *Assessor) { a.volatilityMultiplier = m }
}

// NewAssessor creates an MEV risk assessor.
func NewAssessor(opts ...AssessorOption) *Assessor {
	a := &Assessor{volatilityMultiplier: decimal.NewFromInt(1)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssessRisk produces a full risk assessment for the quote. The trade
// value is passed in USD; isVolatileToken flags tokens known to swing.
func (a *Assessor) AssessRisk(
	quote *quotes.NormalizedQuote,
	tradeValueUSD decimal.Decimal,
	isVolatileToken bool,
) *domain.Assessment {
	factors := a.riskFactors(quote, tradeValueUSD, isVolatileToken)

	totalWeight := decimal.Zero
	weighted := decimal.Zero
	for _, f := range factors {
		totalWeight = totalWeight.Add(f.Weight)
		weighted = weighted.Add(f.Score.Mul(f.Weight))
	}
	riskScore := weighted.Div(totalWeight)

	level := classifyRisk(riskScore)
	exposure := estimateExposure(tradeValueUSD, riskScore, quote.PriceImpactPct)

	return &domain.Assessment{
		RiskLevel:            level,
		RiskScore:            riskScore,
		EstimatedExposureUSD: exposure,
		RiskFactors:          factors,
		ProtectionOptions:    protectionsForLevel(level),
		Recommendation:       recommendation(level, exposure),
	}
}

func (a *Assessor) riskFactors(
	quote *quotes.NormalizedQuote,
	tradeValueUSD decimal.Decimal,
	isVolatileToken bool,
) []domain.RiskFactor {
	volatilityScore := decimal.NewFromInt(30)
	if isVolatileToken {
		volatilityScore = decimal.NewFromInt(80)
	}
	volatilityScore = volatilityScore.Mul(a.volatilityMultiplier)
	if volatilityScore.GreaterThan(hundred) {
		volatilityScore = hundred
	}

	return []domain.RiskFactor{
		{
			Name:        "Trade Size",
			Description: fmt.Sprintf("$%s trade attracts MEV searchers", tradeValueUSD.StringFixed(0)),
			Score:       scoreTradeSize(tradeValueUSD),
			Weight:      weightTradeSize,
		},
		{
			Name:        "Price Impact",
			Description: fmt.Sprintf("%s%% impact creates arbitrage opportunity", quote.PriceImpactPct.StringFixed(2)),
			Score:       scorePriceImpact(quote.PriceImpactPct),
			Weight:      weightPriceImpact,
		},
		{
			Name:        "Route Complexity",
			Description: fmt.Sprintf("%d DEX(s) in route increases surface area", len(quote.Protocols)),
			Score:       scoreRouteComplexity(len(quote.Protocols)),
			Weight:      weightRouteComplexity,
		},
		{
			Name:        "Token Volatility",
			Description: "Volatile tokens enable larger sandwich profits",
			Score:       volatilityScore,
			Weight:      weightTokenVolatility,
		},
		{
			Name:        "Liquidity Depth",
			Description: "Lower liquidity increases MEV opportunity",
			Score:       scoreLiquidity(quote.GasEstimate),
			Weight:      weightLiquidityDepth,
		},
	}
}

func scoreTradeSize(tradeValueUSD decimal.Decimal) decimal.Decimal {
	switch {
	case tradeValueUSD.LessThan(decimal.NewFromInt(1_000)):
		return decimal.NewFromInt(10) // too small to attract searchers
	case tradeValueUSD.LessThan(decimal.NewFromInt(5_000)):
		return decimal.NewFromInt(25)
	case tradeValueUSD.LessThan(decimal.NewFromInt(10_000)):
		return decimal.NewFromInt(40)
	case tradeValueUSD.LessThan(decimal.NewFromInt(50_000)):
		return decimal.NewFromInt(60)
	case tradeValueUSD.LessThan(decimal.NewFromInt(100_000)):
		return decimal.NewFromInt(80)
	default:
		return decimal.NewFromInt(95)
	}
}

func scorePriceImpact(impactPct decimal.Decimal) decimal.Decimal {
	switch {
	case impactPct.LessThan(decimal.RequireFromString("0.1")):
		return decimal.NewFromInt(10)
	case impactPct.LessThan(decimal.RequireFromString("0.5")):
		return decimal.NewFromInt(30)
	case impactPct.LessThan(decimal.NewFromInt(1)):
		return decimal.NewFromInt(50)
	case impactPct.LessThan(decimal.NewFromInt(2)):
		return decimal.NewFromInt(70)
	case impactPct.LessThan(decimal.NewFromInt(5)):
		return decimal.NewFromInt(85)
	default:
		return decimal.NewFromInt(95)
	}
}

func scoreRouteComplexity(numProtocols int) decimal.Decimal {
	switch {
	case numProtocols <= 1:
		return decimal.NewFromInt(20)
	case numProtocols == 2:
		return decimal.NewFromInt(40)
	case numProtocols == 3:
		return decimal.NewFromInt(60)
	default:
		return decimal.NewFromInt(80)
	}
}

// scoreLiquidity uses gas as a liquidity proxy: complex routing burns
// more gas and usually means thin direct paths.
func scoreLiquidity(gasEstimate uint64) decimal.Decimal {
	switch {
	case gasEstimate < 100_000:
		return decimal.NewFromInt(20)
	case gasEstimate < 150_000:
		return decimal.NewFromInt(35)
	case gasEstimate < 200_000:
		return decimal.NewFromInt(50)
	case gasEstimate < 300_000:
		return decimal.NewFromInt(70)
	default:
		return decimal.NewFromInt(85)
	}
}

// classifyRisk buckets the score; boundaries belong to the higher tier,
// so exactly 25.0 is MEDIUM.
func classifyRisk(score decimal.Decimal) domain.RiskLevel {
	switch {
	case score.LessThan(decimal.NewFromInt(25)):
		return domain.RiskLow
	case score.LessThan(decimal.NewFromInt(50)):
		return domain.RiskMedium
	case score.LessThan(decimal.NewFromInt(75)):
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// estimateExposure approximates extractable value from typical sandwich
// profits: up to 2% of trade value at maximum risk, scaled up by price
// impact and capped at 5% of trade value.
func estimateExposure(tradeValueUSD, riskScore, impactPct decimal.Decimal) decimal.Decimal {
	baseRate := riskScore.Div(hundred).Mul(decimal.RequireFromString("0.02"))
	impactMultiplier := decimal.NewFromInt(1).Add(impactPct.Div(hundred))

	exposure := tradeValueUSD.Mul(baseRate).Mul(impactMultiplier)

	cap := tradeValueUSD.Mul(decimal.RequireFromString("0.05"))
	if exposure.GreaterThan(cap) {
		return cap
	}
	return exposure
}

func protectionsForLevel(level domain.RiskLevel) []domain.ProtectionOption {
	switch level {
	case domain.RiskLow:
		return protectionOptions[4:]
	case domain.RiskMedium:
		return protectionOptions[2:]
	case domain.RiskHigh:
		return protectionOptions[:4]
	default:
		return protectionOptions
	}
}

func recommendation(level domain.RiskLevel, exposure decimal.Decimal) string {
	switch level {
	case domain.RiskLow:
		return fmt.Sprintf("LOW MEV RISK: Safe to execute via public mempool. Estimated exposure: $%s",
			exposure.StringFixed(2))
	case domain.RiskMedium:
		return fmt.Sprintf("MEDIUM MEV RISK: Consider using MEV Blocker or tight slippage. Estimated exposure: $%s",
			exposure.StringFixed(2))
	case domain.RiskHigh:
		return fmt.Sprintf("HIGH MEV RISK: Strongly recommend Flashbots Protect or CoW Swap. Estimated exposure: $%s",
			exposure.StringFixed(2))
	default:
		return fmt.Sprintf("CRITICAL MEV RISK: Use private transaction ONLY. Consider splitting order or waiting for lower volatility. Estimated exposure: $%s",
			exposure.StringFixed(2))
	}
}
