// Package domain contains the core types for quote aggregation.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
)

// DefaultValidity is how long a quote is considered fresh.
const DefaultValidity = 30 * time.Second

// DefaultGasEstimate is used when a source omits its gas estimate.
const DefaultGasEstimate = 150_000

// SwapRequest describes the trade the user wants quoted.
// FromToken and ToToken are symbols or 0x-prefixed addresses.
type SwapRequest struct {
	FromToken   string
	ToToken     string
	Amount      decimal.Decimal
	Chain       string
	SlippagePct decimal.Decimal
}

// Validate checks the request before any network calls happen.
func (r SwapRequest) Validate() error {
	if r.FromToken == "" || r.ToToken == "" {
		return apperror.New(apperror.CodeTokenNotFound,
			apperror.WithContext("empty token"))
	}
	if !r.Amount.IsPositive() {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(r.Amount.String()))
	}
	if _, ok := asset.ChainIDByName[r.Chain]; !ok {
		return apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithContext(r.Chain))
	}
	return nil
}

// ChainID returns the numeric chain ID for the request's chain.
func (r SwapRequest) ChainID() uint64 {
	return asset.ChainIDByName[r.Chain]
}

// QuoteCall is a fully-resolved request handed to aggregator sources.
type QuoteCall struct {
	Chain       string
	ChainID     uint64
	From        *asset.Asset
	To          *asset.Asset
	AmountIn    asset.Amount // exact smallest-unit amount
	SlippagePct decimal.Decimal
}

// MarketContext carries the market inputs quote normalization needs.
type MarketContext struct {
	NativePriceUSD decimal.Decimal
	GasPriceGwei   decimal.Decimal
}

// NormalizedQuote is the standard quote shape across all sources.
type NormalizedQuote struct {
	Source         string
	InputToken     string
	OutputToken    string
	InputAmount    decimal.Decimal
	OutputAmount   decimal.Decimal
	Price          decimal.Decimal // output per input unit
	PriceImpactPct decimal.Decimal
	GasEstimate    uint64
	GasPriceGwei   decimal.Decimal
	GasCostUSD     decimal.Decimal
	EffectiveRate  decimal.Decimal // (output - gas cost) / input
	Route          []string
	Protocols      []string
	Timestamp      time.Time
	ValidFor       time.Duration
}

// Age returns how old the quote is at now.
func (q *NormalizedQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.Timestamp)
}

// IsExpired reports whether the quote's validity window has passed.
func (q *NormalizedQuote) IsExpired(now time.Time) bool {
	validity := q.ValidFor
	if validity <= 0 {
		validity = DefaultValidity
	}
	return q.Age(now) > validity
}

// ComputeDerived fills Price, GasCostUSD and EffectiveRate from the raw
// amounts and market inputs. Gas cost in USD is subtracted from the output
// before dividing, so effective rate is only meaningful for USD-denominated
// output tokens; for other pairs it still gives a consistent ordering.
func (q *NormalizedQuote) ComputeDerived(mkt MarketContext) {
	if !q.InputAmount.IsPositive() {
		return
	}

	q.Price = q.OutputAmount.Div(q.InputAmount)

	if q.GasCostUSD.IsZero() {
		// gasCostNative = gasEstimate * gasPriceGwei / 1e9
		gasNative := decimal.NewFromInt(int64(q.GasEstimate)).
			Mul(q.GasPriceGwei).
			Shift(-9)
		q.GasCostUSD = gasNative.Mul(mkt.NativePriceUSD)
	}

	effectiveOutput := q.OutputAmount.Sub(q.GasCostUSD)
	q.EffectiveRate = effectiveOutput.Div(q.InputAmount)
}
