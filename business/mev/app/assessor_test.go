package app

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/mev/domain"
	quotes "github.com/fd1az/dex-router/business/quotes/domain"
)

func makeRiskQuote(impact string, gasEstimate uint64, protocols []string) *quotes.NormalizedQuote {
	return &quotes.NormalizedQuote{
		Source:         "1inch",
		InputToken:     "ETH",
		OutputToken:    "USDC",
		InputAmount:    decimal.NewFromInt(20),
		OutputAmount:   decimal.RequireFromString("50432.18"),
		PriceImpactPct: decimal.RequireFromString(impact),
		GasEstimate:    gasEstimate,
		GasCostUSD:     decimal.RequireFromString("14.44"),
		EffectiveRate:  decimal.RequireFromString("2520.89"),
		Protocols:      protocols,
		Timestamp:      time.Now(),
	}
}

func TestAssessRisk_ModerateTrade(t *testing.T) {
	assessor := NewAssessor()
	quote := makeRiskQuote("0.45", 165_000, []string{"Uniswap V3", "Curve"})

	a := assessor.AssessRisk(quote, decimal.NewFromInt(50_000), false)

	// size 60 x .35 + impact 30 x .25 + route 40 x .15 + volatility 30 x .15
	// + liquidity 50 x .10 = 44
	want := decimal.NewFromInt(44)
	if !a.RiskScore.Equal(want) {
		t.Errorf("risk score %s, want %s", a.RiskScore, want)
	}
	if a.RiskLevel != domain.RiskMedium {
		t.Errorf("risk level %s, want MEDIUM", a.RiskLevel)
	}
	if len(a.RiskFactors) != 5 {
		t.Errorf("expected 5 risk factors, got %d", len(a.RiskFactors))
	}

	// exposure = 50000 x 0.0088 x 1.0045 = 441.98
	wantExposure := decimal.RequireFromString("441.98")
	if !a.EstimatedExposureUSD.Equal(wantExposure) {
		t.Errorf("exposure %s, want %s", a.EstimatedExposureUSD, wantExposure)
	}

	if !strings.Contains(a.Recommendation, "MEDIUM MEV RISK") {
		t.Errorf("unexpected recommendation: %q", a.Recommendation)
	}
	if !strings.Contains(a.Recommendation, "$441.98") {
		t.Errorf("recommendation must embed the exposure estimate: %q", a.Recommendation)
	}
}

func TestAssessRisk_MonotoneInTradeValue(t *testing.T) {
	assessor := NewAssessor()
	quote := makeRiskQuote("0.45", 165_000, []string{"Uniswap V3"})

	values := []int64{500, 2_000, 7_500, 25_000, 75_000, 250_000}
	prev := decimal.NewFromInt(-1)
	for _, v := range values {
		a := assessor.AssessRisk(quote, decimal.NewFromInt(v), false)
		if a.RiskScore.LessThan(prev) {
			t.Errorf("risk score decreased at trade value %d: %s < %s", v, a.RiskScore, prev)
		}
		prev = a.RiskScore
	}
}

func TestClassifyRisk_Boundaries(t *testing.T) {
	tests := []struct {
		score string
		want  domain.RiskLevel
	}{
		{"0", domain.RiskLow},
		{"24.99", domain.RiskLow},
		{"25", domain.RiskMedium},
		{"49.99", domain.RiskMedium},
		{"50", domain.RiskHigh},
		{"74.99", domain.RiskHigh},
		{"75", domain.RiskCritical},
		{"100", domain.RiskCritical},
	}

	for _, tt := range tests {
		got := classifyRisk(decimal.RequireFromString(tt.score))
		if got != tt.want {
			t.Errorf("classifyRisk(%s) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEstimateExposure_CappedAtFivePercent(t *testing.T) {
	value := decimal.NewFromInt(100_000)

	// Max risk with huge impact would exceed the cap without clamping.
	got := estimateExposure(value, decimal.NewFromInt(100), decimal.NewFromInt(200))
	cap := decimal.NewFromInt(5_000)
	if !got.Equal(cap) {
		t.Errorf("exposure %s, want capped %s", got, cap)
	}

	// Low-risk exposure stays under the cap.
	got = estimateExposure(value, decimal.NewFromInt(10), decimal.Zero)
	want := decimal.NewFromInt(200) // 100000 x 0.002
	if !got.Equal(want) {
		t.Errorf("exposure %s, want %s", got, want)
	}
}

func TestProtectionsEscalateWithRisk(t *testing.T) {
	tests := []struct {
		level domain.RiskLevel
		count int
		first string
	}{
		{domain.RiskLow, 1, "Slippage Tightening"},
		{domain.RiskMedium, 3, "MEV Blocker"},
		{domain.RiskHigh, 4, "Flashbots Protect"},
		{domain.RiskCritical, 5, "Flashbots Protect"},
	}

	for _, tt := range tests {
		got := protectionsForLevel(tt.level)
		if len(got) != tt.count {
			t.Errorf("%s: %d options, want %d", tt.level, len(got), tt.count)
		}
		if got[0].Name != tt.first {
			t.Errorf("%s: first option %s, want %s", tt.level, got[0].Name, tt.first)
		}
	}
}

func TestVolatilityMultiplierClamped(t *testing.T) {
	assessor := NewAssessor(WithVolatilityMultiplier(decimal.NewFromInt(3)))
	quote := makeRiskQuote("0.45", 165_000, []string{"Uniswap V3"})

	a := assessor.AssessRisk(quote, decimal.NewFromInt(50_000), true)

	for _, f := range a.RiskFactors {
		if f.Name == "Token Volatility" && f.Score.GreaterThan(decimal.NewFromInt(100)) {
			t.Errorf("volatility score %s exceeds 100", f.Score)
		}
	}
}
