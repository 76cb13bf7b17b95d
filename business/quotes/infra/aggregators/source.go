// Package aggregators contains the HTTP adapters for each quote source.
package aggregators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
	"github.com/fd1az/dex-router/internal/circuitbreaker"
	"github.com/fd1az/dex-router/internal/httpclient"
	"github.com/fd1az/dex-router/internal/ratelimit"
)

// SourceConfig holds the settings every aggregator adapter shares.
type SourceConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
}

// base bundles the plumbing each source needs: an instrumented HTTP
// client, a per-source rate limiter, and a circuit breaker.
type base struct {
	name    string
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	chains  map[uint64]bool
}

func newBase(name string, cfg SourceConfig, chains map[uint64]bool, headers map[string]string) (*base, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(name),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithHeaders(headers),
		httpclient.WithRequestTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", name, err)
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}

	return &base{
		name:    name,
		client:  client,
		limiter: ratelimit.NewPerSecond(rps),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig(name)),
		chains:  chains,
	}, nil
}

// Name returns the canonical source name.
func (b *base) Name() string { return b.name }

// SupportsChain reports whether the source quotes on the chain.
func (b *base) SupportsChain(chainID uint64) bool { return b.chains[chainID] }

// get runs a rate-limited GET through the breaker and maps failures to
// the source error taxonomy.
func (b *base) get(ctx context.Context, path string, params map[string]string, result any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return sourceErr(b.name, err)
	}

	resp, err := b.breaker.Execute(func() (*httpclient.Response, error) {
		return b.client.NewRequest().
			SetQueryParams(params).
			SetResult(result).
			Get(ctx, path)
	})
	if err != nil {
		return sourceErr(b.name, err)
	}

	if resp.IsError() {
		return apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithContext(fmt.Sprintf("%s returned %d", b.name, resp.StatusCode)))
	}

	return nil
}

// sourceErr distinguishes timeouts from other source failures.
func sourceErr(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.New(apperror.CodeSourceTimeout,
			apperror.WithCause(err),
			apperror.WithContext(name))
	}
	if apperror.IsCode(err, apperror.CodeCircuitOpen) {
		return err
	}
	return apperror.New(apperror.CodeSourceUnavailable,
		apperror.WithCause(err),
		apperror.WithContext(name))
}

// amountFromRaw converts a smallest-unit integer string to a decimal
// amount using the token's decimals.
func amountFromRaw(raw string, a *asset.Asset) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d.Shift(-int32(a.Decimals())), nil
}

// newQuote builds the common parts of a normalized quote and fills the
// derived fields from the market context.
func newQuote(
	source string,
	call domain.QuoteCall,
	outputAmount decimal.Decimal,
	gasEstimate uint64,
	protocols []string,
	mkt domain.MarketContext,
) *domain.NormalizedQuote {
	if gasEstimate == 0 {
		gasEstimate = domain.DefaultGasEstimate
	}
	if len(protocols) == 0 {
		protocols = []string{"Various"}
	}

	q := &domain.NormalizedQuote{
		Source:       source,
		InputToken:   call.From.Symbol(),
		OutputToken:  call.To.Symbol(),
		InputAmount:  call.AmountIn.ToDecimal(),
		OutputAmount: outputAmount,
		GasEstimate:  gasEstimate,
		GasPriceGwei: mkt.GasPriceGwei,
		Route:        []string{call.From.Symbol(), call.To.Symbol()},
		Protocols:    protocols,
		Timestamp:    time.Now(),
		ValidFor:     domain.DefaultValidity,
	}
	q.ComputeDerived(mkt)
	return q
}

// dedupe removes repeated protocol names preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
