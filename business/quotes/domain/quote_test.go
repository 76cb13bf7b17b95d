package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeDerived(t *testing.T) {
	q := &NormalizedQuote{
		Source:       "1inch",
		InputToken:   "ETH",
		OutputToken:  "USDC",
		InputAmount:  decimal.NewFromInt(10),
		OutputAmount: decimal.RequireFromString("25432.18"),
		GasEstimate:  150_000,
		GasPriceGwei: decimal.NewFromInt(30),
	}

	q.ComputeDerived(MarketContext{
		NativePriceUSD: decimal.NewFromInt(2500),
		GasPriceGwei:   decimal.NewFromInt(30),
	})

	// 150000 gas x 30 gwei = 0.0045 ETH = $11.25
	if !q.GasCostUSD.Equal(decimal.RequireFromString("11.25")) {
		t.Errorf("gas cost %s, want 11.25", q.GasCostUSD)
	}

	wantPrice := decimal.RequireFromString("2543.218")
	if !q.Price.Equal(wantPrice) {
		t.Errorf("price %s, want %s", q.Price, wantPrice)
	}

	// (25432.18 - 11.25) / 10
	wantRate := decimal.RequireFromString("2542.093")
	if !q.EffectiveRate.Equal(wantRate) {
		t.Errorf("effective rate %s, want %s", q.EffectiveRate, wantRate)
	}
}

func TestComputeDerived_KeepsSourceGasCost(t *testing.T) {
	q := &NormalizedQuote{
		InputAmount:  decimal.NewFromInt(10),
		OutputAmount: decimal.NewFromInt(25000),
		GasCostUSD:   decimal.RequireFromString("9.80"),
	}

	q.ComputeDerived(MarketContext{NativePriceUSD: decimal.NewFromInt(2500)})

	if !q.GasCostUSD.Equal(decimal.RequireFromString("9.80")) {
		t.Errorf("source-reported gas cost was overwritten: %s", q.GasCostUSD)
	}
}

func TestComputeDerived_ZeroInputIsNoop(t *testing.T) {
	q := &NormalizedQuote{OutputAmount: decimal.NewFromInt(100)}
	q.ComputeDerived(MarketContext{})

	if !q.Price.IsZero() || !q.EffectiveRate.IsZero() {
		t.Error("derived fields must stay zero for zero input")
	}
}

func TestIsExpired(t *testing.T) {
	base := time.Now()
	q := &NormalizedQuote{Timestamp: base, ValidFor: 30 * time.Second}

	if q.IsExpired(base.Add(29 * time.Second)) {
		t.Error("quote expired before its validity window closed")
	}
	if !q.IsExpired(base.Add(31 * time.Second)) {
		t.Error("quote still fresh after its validity window")
	}

	// Zero ValidFor falls back to the default window.
	q.ValidFor = 0
	if q.IsExpired(base.Add(DefaultValidity - time.Second)) {
		t.Error("default validity window not honored")
	}
	if !q.IsExpired(base.Add(DefaultValidity + time.Second)) {
		t.Error("quote never expires with zero ValidFor")
	}
}

func TestSwapRequestValidate(t *testing.T) {
	valid := SwapRequest{
		FromToken:   "ETH",
		ToToken:     "USDC",
		Amount:      decimal.NewFromInt(1),
		Chain:       "ethereum",
		SlippagePct: decimal.RequireFromString("0.5"),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	bad := valid
	bad.Amount = decimal.NewFromInt(-1)
	if err := bad.Validate(); err == nil {
		t.Error("negative amount accepted")
	}

	bad = valid
	bad.Chain = "near"
	if err := bad.Validate(); err == nil {
		t.Error("unsupported chain accepted")
	}
}
