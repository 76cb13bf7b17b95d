package aggregators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
)

func testCall(t *testing.T) domain.QuoteCall {
	t.Helper()

	registry := asset.DefaultRegistry()
	eth, ok := registry.GetNative(asset.ChainIDEthereum)
	if !ok {
		t.Fatal("native ETH missing from default registry")
	}
	usdc, ok := registry.GetBySymbolAndChain("USDC", asset.ChainIDEthereum)
	if !ok {
		t.Fatal("USDC missing from default registry")
	}

	amount, err := asset.ParseString(eth, "10")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	return domain.QuoteCall{
		Chain:       "ethereum",
		ChainID:     asset.ChainIDEthereum,
		From:        eth,
		To:          usdc,
		AmountIn:    amount,
		SlippagePct: decimal.RequireFromString("0.5"),
	}
}

func testMarket() domain.MarketContext {
	return domain.MarketContext{
		NativePriceUSD: decimal.NewFromInt(2500),
		GasPriceGwei:   decimal.NewFromInt(30),
	}
}

func TestOneInchFetchQuote(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"src":    r.URL.Query().Get("src"),
			"dst":    r.URL.Query().Get("dst"),
			"amount": r.URL.Query().Get("amount"),
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// USDC has 6 decimals: 25432.18 USDC
		w.Write([]byte(`{
			"dstAmount": "25432180000",
			"estimatedGas": 180000,
			"protocols": [[[{"name": "UNISWAP_V3"}], [{"name": "CURVE"}, {"name": "UNISWAP_V3"}]]]
		}`))
	}))
	defer srv.Close()

	src, err := NewOneInch(SourceConfig{BaseURL: srv.URL, APIKey: "test-key", RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewOneInch: %v", err)
	}

	q, err := src.FetchQuote(context.Background(), testCall(t), testMarket())
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if gotPath != "/1/quote" {
		t.Errorf("path = %q, want /1/quote", gotPath)
	}
	if gotQuery["src"] != asset.NativeSentinel.Hex() {
		t.Errorf("src param = %q, want native sentinel", gotQuery["src"])
	}
	if gotQuery["amount"] != "10000000000000000000" {
		t.Errorf("amount param = %q, want raw wei", gotQuery["amount"])
	}

	if q.Source != SourceOneInch {
		t.Errorf("Source = %q", q.Source)
	}
	if !q.OutputAmount.Equal(decimal.RequireFromString("25432.18")) {
		t.Errorf("OutputAmount = %s, want 25432.18", q.OutputAmount)
	}
	if q.GasEstimate != 180000 {
		t.Errorf("GasEstimate = %d, want 180000", q.GasEstimate)
	}
	if len(q.Protocols) != 2 || q.Protocols[0] != "UNISWAP_V3" || q.Protocols[1] != "CURVE" {
		t.Errorf("Protocols = %v, want deduped [UNISWAP_V3 CURVE]", q.Protocols)
	}
	if q.Price.IsZero() || q.EffectiveRate.IsZero() {
		t.Error("derived fields not computed")
	}
}

func TestOneInchServerErrorMapsToSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src, err := NewOneInch(SourceConfig{BaseURL: srv.URL, RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewOneInch: %v", err)
	}

	_, err = src.FetchQuote(context.Background(), testCall(t), testMarket())
	if !apperror.IsCode(err, apperror.CodeSourceUnavailable) {
		t.Errorf("error = %v, want CodeSourceUnavailable", err)
	}
}

func TestParaswapFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prices" {
			t.Errorf("path = %q, want /prices", r.URL.Path)
		}
		if got := r.URL.Query().Get("network"); got != "1" {
			t.Errorf("network param = %q, want 1", got)
		}
		if got := r.URL.Query().Get("destDecimals"); got != "6" {
			t.Errorf("destDecimals param = %q, want 6", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"priceRoute": {
				"destAmount": "25380500000",
				"gasCost": "210000",
				"priceImpact": "15",
				"bestRoute": [{"swaps": [{"swapExchanges": [{"exchange": "BalancerV2"}]}]}]
			}
		}`))
	}))
	defer srv.Close()

	src, err := NewParaswap(SourceConfig{BaseURL: srv.URL, RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewParaswap: %v", err)
	}

	q, err := src.FetchQuote(context.Background(), testCall(t), testMarket())
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if !q.OutputAmount.Equal(decimal.RequireFromString("25380.5")) {
		t.Errorf("OutputAmount = %s, want 25380.5", q.OutputAmount)
	}
	if q.GasEstimate != 210000 {
		t.Errorf("GasEstimate = %d, want 210000", q.GasEstimate)
	}
	// priceImpact arrives scaled by 100: 15 means 0.15%
	if !q.PriceImpactPct.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("PriceImpactPct = %s, want 0.15", q.PriceImpactPct)
	}
	if len(q.Protocols) != 1 || q.Protocols[0] != "BalancerV2" {
		t.Errorf("Protocols = %v", q.Protocols)
	}
}

func TestZeroXFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("0x-api-key"); got != "zx-key" {
			t.Errorf("0x-api-key header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"buyAmount": "25401000000",
			"estimatedGas": "165000",
			"gasPrice": "40000000000",
			"estimatedPriceImpact": "0.22",
			"sources": [
				{"name": "Uniswap_V3", "proportion": "0.8"},
				{"name": "Curve", "proportion": "0.2"},
				{"name": "SushiSwap", "proportion": "0"}
			]
		}`))
	}))
	defer srv.Close()

	src, err := NewZeroX(SourceConfig{BaseURL: srv.URL, APIKey: "zx-key", RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewZeroX: %v", err)
	}

	q, err := src.FetchQuote(context.Background(), testCall(t), testMarket())
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if !q.OutputAmount.Equal(decimal.RequireFromString("25401")) {
		t.Errorf("OutputAmount = %s, want 25401", q.OutputAmount)
	}
	// zero-proportion sources are dropped
	if len(q.Protocols) != 2 || q.Protocols[0] != "Uniswap_V3" || q.Protocols[1] != "Curve" {
		t.Errorf("Protocols = %v, want [Uniswap_V3 Curve]", q.Protocols)
	}
	// the quote's own gas price wins over the market context:
	// 165000 gas * 40 gwei * $2500 = $16.50
	if !q.GasPriceGwei.Equal(decimal.NewFromInt(40)) {
		t.Errorf("GasPriceGwei = %s, want 40", q.GasPriceGwei)
	}
	if !q.GasCostUSD.Equal(decimal.RequireFromString("16.5")) {
		t.Errorf("GasCostUSD = %s, want 16.5", q.GasCostUSD)
	}
	if !q.PriceImpactPct.Equal(decimal.RequireFromString("0.22")) {
		t.Errorf("PriceImpactPct = %s, want 0.22", q.PriceImpactPct)
	}
}

func TestMalformedBodyMapsToInvalidQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dstAmount": ""}`))
	}))
	defer srv.Close()

	src, err := NewOneInch(SourceConfig{BaseURL: srv.URL, RequestsPerSec: 100})
	if err != nil {
		t.Fatalf("NewOneInch: %v", err)
	}

	_, err = src.FetchQuote(context.Background(), testCall(t), testMarket())
	if !apperror.IsCode(err, apperror.CodeInvalidQuote) {
		t.Errorf("error = %v, want CodeInvalidQuote", err)
	}
}
