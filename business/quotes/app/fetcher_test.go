package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
	"github.com/fd1az/dex-router/internal/logger"
)

type fakeSource struct {
	name   string
	chains map[uint64]bool
	delay  time.Duration
	err    error
	output string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) SupportsChain(chainID uint64) bool {
	if f.chains == nil {
		return true
	}
	return f.chains[chainID]
}

func (f *fakeSource) FetchQuote(ctx context.Context, call domain.QuoteCall, mkt domain.MarketContext) (*domain.NormalizedQuote, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	q := &domain.NormalizedQuote{
		Source:       f.name,
		InputToken:   call.From.Symbol(),
		OutputToken:  call.To.Symbol(),
		InputAmount:  call.AmountIn.ToDecimal(),
		OutputAmount: decimal.RequireFromString(f.output),
		GasEstimate:  150_000,
		GasPriceGwei: mkt.GasPriceGwei,
		Timestamp:    time.Now(),
	}
	q.ComputeDerived(mkt)
	return q, nil
}

type staticMarket struct{}

func (staticMarket) NativePriceUSD(context.Context) decimal.Decimal {
	return decimal.NewFromInt(2500)
}

func (staticMarket) GasPriceGwei(context.Context) decimal.Decimal {
	return decimal.NewFromInt(30)
}

func newTestFetcher(t *testing.T, cfg FetcherConfig, sources ...AggregatorSource) *Fetcher {
	t.Helper()
	f, err := NewFetcher(sources, staticMarket{}, asset.DefaultRegistry(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func testRequest() domain.SwapRequest {
	return domain.SwapRequest{
		FromToken:   "ETH",
		ToToken:     "USDC",
		Amount:      decimal.NewFromInt(10),
		Chain:       "ethereum",
		SlippagePct: decimal.RequireFromString("0.5"),
	}
}

func TestFetchAll_SlowSourceDoesNotBlockSiblings(t *testing.T) {
	timeout := 100 * time.Millisecond
	f := newTestFetcher(t, FetcherConfig{SourceTimeout: timeout},
		&fakeSource{name: "1inch", output: "25432.18"},
		&fakeSource{name: "Paraswap", output: "25398.45"},
		&fakeSource{name: "0x", delay: time.Second, output: "25410.00"},
	)

	start := time.Now()
	quotes, err := f.FetchAll(context.Background(), testRequest())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes from the fast sources, got %d", len(quotes))
	}
	if elapsed > 3*timeout {
		t.Errorf("fetch took %s, expected under %s", elapsed, 3*timeout)
	}

	for _, q := range quotes {
		if q.Source == "0x" {
			t.Error("timed-out source must not contribute a quote")
		}
		if q.ValidFor != domain.DefaultValidity {
			t.Errorf("quote validity %s, want %s", q.ValidFor, domain.DefaultValidity)
		}
	}
}

func TestFetchAll_PartialFailuresAreContained(t *testing.T) {
	f := newTestFetcher(t, FetcherConfig{},
		&fakeSource{name: "1inch", err: errors.New("rate limited")},
		&fakeSource{name: "Paraswap", output: "25398.45"},
	)

	quotes, err := f.FetchAll(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Source != "Paraswap" {
		t.Fatalf("expected only the Paraswap quote, got %v", quotes)
	}
}

func TestFetchAll_AllSourcesFailed(t *testing.T) {
	f := newTestFetcher(t, FetcherConfig{},
		&fakeSource{name: "1inch", err: errors.New("boom")},
		&fakeSource{name: "0x", err: errors.New("boom")},
	)

	_, err := f.FetchAll(context.Background(), testRequest())
	if !apperror.IsCode(err, apperror.CodeNoQuotes) {
		t.Fatalf("expected CodeNoQuotes, got %v", err)
	}
}

func TestFetchAll_SkipsSourcesOnOtherChains(t *testing.T) {
	f := newTestFetcher(t, FetcherConfig{},
		&fakeSource{name: "1inch", output: "25432.18"},
		&fakeSource{name: "0x", output: "25410.00", chains: map[uint64]bool{asset.ChainIDPolygon: true}},
	)

	quotes, err := f.FetchAll(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Source != "1inch" {
		t.Fatalf("expected only the mainnet source, got %d quotes", len(quotes))
	}
}

func TestResolve_Validation(t *testing.T) {
	f := newTestFetcher(t, FetcherConfig{}, &fakeSource{name: "1inch", output: "1"})

	tests := []struct {
		name     string
		mutate   func(*domain.SwapRequest)
		wantCode apperror.Code
	}{
		{
			name:     "unknown_token",
			mutate:   func(r *domain.SwapRequest) { r.FromToken = "NOPE" },
			wantCode: apperror.CodeTokenNotFound,
		},
		{
			name:     "non_positive_amount",
			mutate:   func(r *domain.SwapRequest) { r.Amount = decimal.Zero },
			wantCode: apperror.CodeInvalidAmount,
		},
		{
			name:     "unsupported_chain",
			mutate:   func(r *domain.SwapRequest) { r.Chain = "solana" },
			wantCode: apperror.CodeUnsupportedChain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)

			_, err := f.Resolve(req)
			if !apperror.IsCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestResolve_ScalesAmountToTokenDecimals(t *testing.T) {
	f := newTestFetcher(t, FetcherConfig{}, &fakeSource{name: "1inch", output: "1"})

	call, err := f.Resolve(testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10 ETH = 1e19 wei
	if call.AmountIn.Raw().String() != "10000000000000000000" {
		t.Errorf("unexpected raw amount %s", call.AmountIn.Raw())
	}
	if call.ChainID != asset.ChainIDEthereum {
		t.Errorf("chain ID %d, want %d", call.ChainID, asset.ChainIDEthereum)
	}
}
