package aggregators

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
)

// SourceZeroX is the canonical 0x source name.
const SourceZeroX = "0x"

var zeroXChains = map[uint64]bool{
	asset.ChainIDEthereum: true,
	asset.ChainIDPolygon:  true,
	asset.ChainIDArbitrum: true,
}

// zeroXResponse is the subset of the 0x swap quote response we use.
type zeroXResponse struct {
	BuyAmount            string `json:"buyAmount"`
	EstimatedGas         string `json:"estimatedGas"`
	GasPrice             string `json:"gasPrice"`
	EstimatedPriceImpact string `json:"estimatedPriceImpact"`
	Sources              []struct {
		Name       string `json:"name"`
		Proportion string `json:"proportion"`
	} `json:"sources"`
}

// ZeroX fetches quotes from the 0x swap API.
type ZeroX struct {
	*base
}

// NewZeroX creates the 0x source. The API key goes in the 0x-api-key header.
func NewZeroX(cfg SourceConfig) (*ZeroX, error) {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["0x-api-key"] = cfg.APIKey
	}

	b, err := newBase(SourceZeroX, cfg, zeroXChains, headers)
	if err != nil {
		return nil, err
	}
	return &ZeroX{base: b}, nil
}

// FetchQuote implements app.AggregatorSource.
func (s *ZeroX) FetchQuote(ctx context.Context, call domain.QuoteCall, mkt domain.MarketContext) (*domain.NormalizedQuote, error) {
	var resp zeroXResponse

	params := map[string]string{
		"sellToken":  asset.AggregatorAddress(call.From).Hex(),
		"buyToken":   asset.AggregatorAddress(call.To).Hex(),
		"sellAmount": call.AmountIn.Raw().String(),
	}

	if err := s.get(ctx, "/quote", params, &resp); err != nil {
		return nil, err
	}

	output, err := amountFromRaw(resp.BuyAmount, call.To)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(SourceZeroX))
	}

	var gasEstimate uint64
	if g, err := strconv.ParseUint(resp.EstimatedGas, 10, 64); err == nil {
		gasEstimate = g
	}

	// 0x reports liquidity sources with their share of the fill
	var protocols []string
	for _, src := range resp.Sources {
		if p, err := decimal.NewFromString(src.Proportion); err == nil && p.IsPositive() {
			protocols = append(protocols, src.Name)
		}
	}

	q := newQuote(SourceZeroX, call, output, gasEstimate, protocols, mkt)

	// 0x includes its own gas price; prefer it over the market estimate
	if gasPriceWei, err := decimal.NewFromString(resp.GasPrice); err == nil && gasPriceWei.IsPositive() {
		q.GasPriceGwei = gasPriceWei.Shift(-9)
		q.GasCostUSD = decimal.Zero
		q.ComputeDerived(mkt)
	}

	if impact, err := decimal.NewFromString(resp.EstimatedPriceImpact); err == nil {
		q.PriceImpactPct = impact
	}

	return q, nil
}
