package app

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	quotes "github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
)

// Helper for split tests: quotes all priced for the same 100 ETH input.
func makeSplitQuote(source, output, effectiveRate, impact, gasUSD string) *quotes.NormalizedQuote {
	return &quotes.NormalizedQuote{
		Source:         source,
		InputToken:     "ETH",
		OutputToken:    "USDC",
		InputAmount:    decimal.NewFromInt(100),
		OutputAmount:   decimal.RequireFromString(output),
		PriceImpactPct: decimal.RequireFromString(impact),
		GasEstimate:    150_000,
		GasCostUSD:     decimal.RequireFromString(gasUSD),
		EffectiveRate:  decimal.RequireFromString(effectiveRate),
		Timestamp:      time.Now(),
		ValidFor:       30 * time.Second,
	}
}

func whaleQuotes() []*quotes.NormalizedQuote {
	return []*quotes.NormalizedQuote{
		makeSplitQuote("1inch", "251200.00", "2511.89", "1.5", "11.25"),
		makeSplitQuote("Paraswap", "250800.00", "2507.87", "1.8", "13.50"),
		makeSplitQuote("0x", "250500.00", "2504.88", "2.0", "12.00"),
	}
}

func TestCalculateSplit_Invariants(t *testing.T) {
	calc := NewSplitCalculator(DefaultSplitConfig())
	total := decimal.NewFromInt(100)

	rec, err := calc.CalculateSplit(whaleQuotes(), total, decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Allocations) < 2 {
		t.Fatalf("expected a multi-venue split for a $250k trade, got %d allocations", len(rec.Allocations))
	}

	// Percentages close to exactly 100, amounts close to exactly the total.
	sumPct := decimal.Zero
	sumAmount := decimal.Zero
	for _, a := range rec.Allocations {
		sumPct = sumPct.Add(a.Percentage)
		sumAmount = sumAmount.Add(a.InputAmount)
	}
	if !sumPct.Equal(decimal.NewFromInt(100)) {
		t.Errorf("allocation percentages sum to %s, want exactly 100", sumPct)
	}
	if !sumAmount.Equal(total) {
		t.Errorf("allocation amounts sum to %s, want exactly %s", sumAmount, total)
	}

	// Best effective rate venue leads the split.
	if rec.Allocations[0].Source != "1inch" {
		t.Errorf("expected 1inch as lead venue, got %s", rec.Allocations[0].Source)
	}

	// Partial-fill impact must not exceed the full-size impact.
	for _, a := range rec.Allocations {
		full := decimal.RequireFromString("2.0")
		if a.PriceImpactPct.GreaterThan(full) {
			t.Errorf("%s: partial impact %s exceeds full impact", a.Source, a.PriceImpactPct)
		}
	}

	// net_benefit = improvement - extra gas, beneficial only when > 0.
	extraGas := rec.TotalGasCostUSD.Sub(decimal.RequireFromString("11.25"))
	wantNet := rec.ImprovementAmount.Sub(extraGas)
	if !rec.NetBenefit.Equal(wantNet) {
		t.Errorf("net benefit %s, want %s", rec.NetBenefit, wantNet)
	}
	if rec.IsSplitBeneficial != rec.NetBenefit.IsPositive() {
		t.Errorf("is_split_beneficial=%v inconsistent with net benefit %s",
			rec.IsSplitBeneficial, rec.NetBenefit)
	}
}

func TestCalculateSplit_BelowThresholdStaysSingle(t *testing.T) {
	calc := NewSplitCalculator(DefaultSplitConfig())

	// 1 ETH at $2500 is well under the $5000 minimum.
	rec, err := calc.CalculateSplit(whaleQuotes(), decimal.NewFromInt(1), decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Allocations) != 1 {
		t.Fatalf("expected single allocation, got %d", len(rec.Allocations))
	}
	if !rec.Allocations[0].Percentage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100%% allocation, got %s", rec.Allocations[0].Percentage)
	}
	if rec.Allocations[0].Source != "1inch" {
		t.Errorf("expected best effective rate venue, got %s", rec.Allocations[0].Source)
	}
	if rec.IsSplitBeneficial {
		t.Error("small trades must never report a beneficial split")
	}
	if !strings.Contains(rec.Recommendation, "Single venue is optimal") {
		t.Errorf("unexpected recommendation: %q", rec.Recommendation)
	}
}

func TestCalculateSplit_SingleQuote(t *testing.T) {
	calc := NewSplitCalculator(DefaultSplitConfig())
	qs := whaleQuotes()[:1]

	rec, err := calc.CalculateSplit(qs, decimal.NewFromInt(100), decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Allocations) != 1 {
		t.Fatalf("expected one allocation, got %d", len(rec.Allocations))
	}
	if !rec.Allocations[0].Percentage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100%%, got %s", rec.Allocations[0].Percentage)
	}
	if !rec.Allocations[0].InputAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected full amount, got %s", rec.Allocations[0].InputAmount)
	}
}

func TestCalculateSplit_DropsThinNonFinalVenues(t *testing.T) {
	calc := NewSplitCalculator(DefaultSplitConfig())

	// The middle venue's impact is so high its inverse weight lands under
	// the 10% floor; it must vanish from the split.
	qs := []*quotes.NormalizedQuote{
		makeSplitQuote("1inch", "251200.00", "2511.89", "0.5", "11.25"),
		makeSplitQuote("Paraswap", "250800.00", "2507.87", "50.0", "13.50"),
		makeSplitQuote("0x", "250500.00", "2504.88", "0.6", "12.00"),
	}

	rec, err := calc.CalculateSplit(qs, decimal.NewFromInt(100), decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, a := range rec.Allocations {
		if a.Source == "Paraswap" {
			t.Errorf("high-impact venue should have been dropped, got %s%%", a.Percentage)
		}
	}

	sumPct := decimal.Zero
	for _, a := range rec.Allocations {
		sumPct = sumPct.Add(a.Percentage)
	}
	if !sumPct.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percentages sum to %s after drop, want 100", sumPct)
	}
}

func TestCalculateSplit_RespectsMaxVenues(t *testing.T) {
	cfg := DefaultSplitConfig()
	cfg.MinAllocationPct = decimal.Zero // keep every venue eligible
	calc := NewSplitCalculator(cfg)

	qs := []*quotes.NormalizedQuote{
		makeSplitQuote("1inch", "251200.00", "2511.89", "1.5", "11.25"),
		makeSplitQuote("Paraswap", "250800.00", "2507.87", "1.8", "13.50"),
		makeSplitQuote("0x", "250500.00", "2504.88", "2.0", "12.00"),
		makeSplitQuote("Uniswap", "250400.00", "2503.88", "2.1", "10.00"),
		makeSplitQuote("Curve", "250300.00", "2502.88", "2.2", "9.00"),
	}

	rec, err := calc.CalculateSplit(qs, decimal.NewFromInt(100), decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Allocations) > cfg.MaxVenues {
		t.Errorf("split across %d venues, max is %d", len(rec.Allocations), cfg.MaxVenues)
	}

	// The worst venue by effective rate never makes the cut.
	for _, a := range rec.Allocations {
		if a.Source == "Curve" {
			t.Error("venue beyond max_venues should be excluded")
		}
	}
}

func TestCalculateSplit_NoQuotes(t *testing.T) {
	calc := NewSplitCalculator(DefaultSplitConfig())

	_, err := calc.CalculateSplit(nil, decimal.NewFromInt(100), decimal.NewFromInt(2500))
	if err == nil {
		t.Fatal("expected error for empty quote list")
	}
	if !apperror.IsCode(err, apperror.CodeSplitCalculationError) {
		t.Errorf("unexpected error code: %v", err)
	}
}
