package app

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	quotes "github.com/fd1az/dex-router/business/quotes/domain"
)

// Helper to build a normalized quote with the fields ranking cares about.
func makeQuote(source, output, effectiveRate, gasUSD, impact string, protocols []string, ts time.Time) *quotes.NormalizedQuote {
	return &quotes.NormalizedQuote{
		Source:         source,
		InputToken:     "ETH",
		OutputToken:    "USDC",
		InputAmount:    decimal.NewFromInt(10),
		OutputAmount:   decimal.RequireFromString(output),
		PriceImpactPct: decimal.RequireFromString(impact),
		GasEstimate:    150_000,
		GasCostUSD:     decimal.RequireFromString(gasUSD),
		EffectiveRate:  decimal.RequireFromString(effectiveRate),
		Protocols:      protocols,
		Timestamp:      ts,
		ValidFor:       30 * time.Second,
	}
}

func freshClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestRankQuotes_BestEffectiveRateWins(t *testing.T) {
	now := time.Now()
	qs := []*quotes.NormalizedQuote{
		makeQuote("1inch", "25432.18", "2542.09", "11.25", "0.12", []string{"Uniswap V3"}, now),
		makeQuote("Paraswap", "25398.45", "2538.50", "13.50", "0.15", []string{"Curve", "Uniswap V2"}, now),
		makeQuote("0x", "25410.00", "2539.80", "12.00", "0.14", []string{"Balancer", "SushiSwap"}, now),
	}

	opt := NewOptimizer(WithClock(freshClock(now)))
	analyses := opt.RankQuotes(qs)

	if len(analyses) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(analyses))
	}

	if analyses[0].Quote.Source != "1inch" {
		t.Errorf("expected 1inch first, got %s", analyses[0].Quote.Source)
	}

	// Scores non-increasing, ranks sequential
	for i, a := range analyses {
		if a.Rank != i+1 {
			t.Errorf("rank %d: expected %d, got %d", i, i+1, a.Rank)
		}
		if i > 0 && a.Score.GreaterThan(analyses[i-1].Score) {
			t.Errorf("score at rank %d (%s) exceeds rank %d (%s)",
				a.Rank, a.Score, analyses[i-1].Rank, analyses[i-1].Score)
		}
	}

	// Best route gets the full output and gas component
	best := analyses[0]
	if best.Score.LessThan(decimal.NewFromInt(90)) {
		t.Errorf("expected best score >= 90, got %s", best.Score)
	}

	// Savings measured against the worst output (Paraswap)
	wantSavings := decimal.RequireFromString("33.73") // 25432.18 - 25398.45
	if !best.SavingsVsWorst.Equal(wantSavings) {
		t.Errorf("expected savings %s, got %s", wantSavings, best.SavingsVsWorst)
	}

	worst := analyses[len(analyses)-1]
	if !worst.SavingsVsWorst.IsZero() {
		t.Errorf("worst route should have zero savings, got %s", worst.SavingsVsWorst)
	}
}

func TestRankQuotes_DeterministicTieBreak(t *testing.T) {
	now := time.Now()
	opt := NewOptimizer(WithClock(freshClock(now)))

	// Fully identical quotes from unknown sources score identically and
	// carry the same gas cost, so only the source name orders them.
	qs := []*quotes.NormalizedQuote{
		makeQuote("beta", "25000", "2500", "11.00", "0.10", nil, now),
		makeQuote("alpha", "25000", "2500", "11.00", "0.10", nil, now),
	}
	analyses := opt.RankQuotes(qs)
	if got := analyses[0].Quote.Source; got != "alpha" {
		t.Errorf("expected alpha first on full tie, got %s", got)
	}

	// Unknown sources tie on reliability; equal effective rates make the
	// gas component the deciding score input, so lower gas ranks first.
	qs = []*quotes.NormalizedQuote{
		makeQuote("alpha", "25000", "2500", "12.00", "0.10", nil, now),
		makeQuote("beta", "25000", "2500", "11.00", "0.10", nil, now),
	}
	analyses = opt.RankQuotes(qs)
	if got := analyses[0].Quote.Source; got != "beta" {
		t.Errorf("expected cheaper-gas quote first, got %s", got)
	}
}

func TestRankQuotes_ExpiredQuoteLosesFreshness(t *testing.T) {
	base := time.Now()
	stale := makeQuote("1inch", "25000", "2500", "11.00", "0.10", nil, base.Add(-time.Minute))
	fresh := makeQuote("0x", "25000", "2500", "11.00", "0.10", nil, base)

	opt := NewOptimizer(WithClock(freshClock(base)))
	analyses := opt.RankQuotes([]*quotes.NormalizedQuote{stale, fresh})

	if analyses[0].Quote.Source != "0x" {
		t.Fatalf("expected fresh quote first, got %s", analyses[0].Quote.Source)
	}

	diff := analyses[0].Score.Sub(analyses[1].Score)
	// 10 freshness points minus the reliability edge 1inch has over 0x.
	want := decimal.RequireFromString("9.5")
	if !diff.Equal(want) {
		t.Errorf("expected score gap %s, got %s", want, diff)
	}
}

func TestRankQuotes_Empty(t *testing.T) {
	opt := NewOptimizer()
	if got := opt.RankQuotes(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := opt.CompareRoutes(nil); got != nil {
		t.Errorf("expected nil comparison for empty input, got %v", got)
	}
}

func TestCompareRoutes_SpreadBuckets(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		worstOutput string
		wantContain string
	}{
		{"similar_rates", "24999.00", "similar rates"},
		{"minor_spread", "24900.00", "Worth optimizing"},
		{"significant_spread", "24000.00", "Significant spread"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := []*quotes.NormalizedQuote{
				makeQuote("1inch", "25000.00", "2499.00", "11.00", "0.10", nil, now),
				makeQuote("0x", tt.worstOutput, "2400.00", "12.00", "0.20", nil, now),
			}

			opt := NewOptimizer(WithClock(freshClock(now)))
			cmp := opt.CompareRoutes(qs)

			if cmp == nil {
				t.Fatal("expected comparison")
			}
			if cmp.TotalQuotes != 2 {
				t.Errorf("expected 2 quotes, got %d", cmp.TotalQuotes)
			}
			if !strings.Contains(cmp.Recommendation, tt.wantContain) {
				t.Errorf("recommendation %q does not contain %q", cmp.Recommendation, tt.wantContain)
			}
		})
	}
}

func TestSizeRecommendation(t *testing.T) {
	opt := NewOptimizer()

	tests := []struct {
		sizeUSD     string
		wantContain string
	}{
		{"500", "Small trade"},
		{"5000", "Medium trade"},
		{"50000", "Large trade"},
		{"500000", "Whale trade"},
	}

	for _, tt := range tests {
		got := opt.SizeRecommendation(decimal.RequireFromString(tt.sizeUSD))
		if !strings.Contains(got, tt.wantContain) {
			t.Errorf("size %s: %q does not contain %q", tt.sizeUSD, got, tt.wantContain)
		}
	}
}
