package aggregators

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
)

// SourceParaswap is the canonical Paraswap source name.
const SourceParaswap = "Paraswap"

var paraswapChains = map[uint64]bool{
	asset.ChainIDEthereum: true,
	asset.ChainIDPolygon:  true,
	asset.ChainIDArbitrum: true,
	asset.ChainIDOptimism: true,
}

// paraswapResponse is the subset of the Paraswap prices response we use.
type paraswapResponse struct {
	PriceRoute struct {
		DestAmount  string `json:"destAmount"`
		GasCost     string `json:"gasCost"`
		PriceImpact string `json:"priceImpact"`
		BestRoute   []struct {
			Swaps []struct {
				SwapExchanges []struct {
					Exchange string `json:"exchange"`
				} `json:"swapExchanges"`
			} `json:"swaps"`
		} `json:"bestRoute"`
	} `json:"priceRoute"`
}

// Paraswap fetches quotes from the Paraswap prices API. No API key needed.
type Paraswap struct {
	*base
}

// NewParaswap creates the Paraswap source.
func NewParaswap(cfg SourceConfig) (*Paraswap, error) {
	b, err := newBase(SourceParaswap, cfg, paraswapChains, nil)
	if err != nil {
		return nil, err
	}
	return &Paraswap{base: b}, nil
}

// FetchQuote implements app.AggregatorSource.
func (s *Paraswap) FetchQuote(ctx context.Context, call domain.QuoteCall, mkt domain.MarketContext) (*domain.NormalizedQuote, error) {
	var resp paraswapResponse

	params := map[string]string{
		"srcToken":     asset.AggregatorAddress(call.From).Hex(),
		"destToken":    asset.AggregatorAddress(call.To).Hex(),
		"amount":       call.AmountIn.Raw().String(),
		"srcDecimals":  strconv.Itoa(int(call.From.Decimals())),
		"destDecimals": strconv.Itoa(int(call.To.Decimals())),
		"network":      strconv.FormatUint(call.ChainID, 10),
	}

	if err := s.get(ctx, "/prices", params, &resp); err != nil {
		return nil, err
	}

	output, err := amountFromRaw(resp.PriceRoute.DestAmount, call.To)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(SourceParaswap))
	}

	var gasEstimate uint64
	if g, err := strconv.ParseUint(resp.PriceRoute.GasCost, 10, 64); err == nil {
		gasEstimate = g
	}

	var protocols []string
	for _, route := range resp.PriceRoute.BestRoute {
		for _, swap := range route.Swaps {
			for _, ex := range swap.SwapExchanges {
				protocols = append(protocols, ex.Exchange)
			}
		}
	}

	q := newQuote(SourceParaswap, call, output, gasEstimate, dedupe(protocols), mkt)

	// priceImpact arrives scaled by 100
	if impact, err := decimal.NewFromString(resp.PriceRoute.PriceImpact); err == nil {
		q.PriceImpactPct = impact.Shift(-2)
	}

	return q, nil
}
