package asset_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/internal/asset"
)

func TestAmount_RoundTrip(t *testing.T) {
	// 1 ETH = 1e18 wei
	oneETH := asset.NewAmount(asset.ETH, big.NewInt(1e18))

	if !oneETH.IsPositive() {
		t.Error("expected positive amount")
	}
	if !oneETH.ToDecimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneETH.ToDecimal())
	}
	if oneETH.String() != "1 ETH" {
		t.Errorf("expected '1 ETH', got %q", oneETH.String())
	}
}

func TestParseDecimal(t *testing.T) {
	// USDC carries 6 decimals, so 12.5 USDC is 12_500_000 raw.
	a, err := asset.ParseDecimal(asset.USDC, decimal.RequireFromString("12.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Raw().Cmp(big.NewInt(12_500_000)) != 0 {
		t.Errorf("raw value %s, want 12500000", a.Raw())
	}

	// Sub-unit precision must be rejected, not truncated.
	_, err = asset.ParseDecimal(asset.USDC, decimal.RequireFromString("0.0000001"))
	if !errors.Is(err, asset.ErrTooManyDecimals) {
		t.Errorf("expected ErrTooManyDecimals, got %v", err)
	}

	_, err = asset.ParseDecimal(asset.USDC, decimal.NewFromInt(-1))
	if !errors.Is(err, asset.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	oneETH := asset.NewAmount(asset.ETH, big.NewInt(1e18))
	twoETH := asset.NewAmount(asset.ETH, big.NewInt(2e18))

	sum, err := oneETH.Add(twoETH)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3 ETH, got %s", sum)
	}

	diff, err := twoETH.Sub(oneETH)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.Equals(oneETH) {
		t.Errorf("expected 1 ETH, got %s", diff)
	}

	// Amounts never go negative.
	if _, err := oneETH.Sub(twoETH); !errors.Is(err, asset.ErrNegativeResult) {
		t.Errorf("expected ErrNegativeResult, got %v", err)
	}
}

func TestAmount_DifferentAssetsRejected(t *testing.T) {
	oneETH := asset.NewAmount(asset.ETH, big.NewInt(1e18))
	oneUSDC := asset.NewAmount(asset.USDC, big.NewInt(1e6))

	if _, err := oneETH.Add(oneUSDC); err == nil {
		t.Error("expected error when adding different assets")
	}
	if oneETH.Equals(oneUSDC) {
		t.Error("amounts of different assets must never be equal")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := asset.DefaultRegistry()

	eth, ok := r.GetNative(asset.ChainIDEthereum)
	if !ok || eth.Symbol() != "ETH" {
		t.Fatalf("native lookup failed: %v, %v", eth, ok)
	}

	usdc, ok := r.GetBySymbolAndChain("USDC", asset.ChainIDEthereum)
	if !ok || usdc.Decimals() != 6 {
		t.Fatalf("USDC lookup failed: %v, %v", usdc, ok)
	}

	if _, ok := r.GetBySymbolAndChain("USDC", 999); ok {
		t.Error("lookup on unknown chain must miss")
	}
}
