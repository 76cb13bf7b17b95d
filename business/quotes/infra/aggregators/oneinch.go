package aggregators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
)

// SourceOneInch is the canonical 1inch source name.
const SourceOneInch = "1inch"

var oneInchChains = map[uint64]bool{
	asset.ChainIDEthereum: true,
	asset.ChainIDPolygon:  true,
	asset.ChainIDArbitrum: true,
	asset.ChainIDOptimism: true,
}

// oneInchResponse is the subset of the 1inch v6 quote response we use.
// dstAmount and estimatedGas arrive as strings or numbers depending on
// the endpoint version, so both are raw JSON.
type oneInchResponse struct {
	DstAmount    string          `json:"dstAmount"`
	EstimatedGas json.RawMessage `json:"estimatedGas"`
	Protocols    json.RawMessage `json:"protocols"`
}

// OneInch fetches quotes from the 1inch aggregation API.
type OneInch struct {
	*base
}

// NewOneInch creates the 1inch source. The API key is sent as a bearer
// token; without one the public rate limit applies.
func NewOneInch(cfg SourceConfig) (*OneInch, error) {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	b, err := newBase(SourceOneInch, cfg, oneInchChains, headers)
	if err != nil {
		return nil, err
	}
	return &OneInch{base: b}, nil
}

// FetchQuote implements app.AggregatorSource.
func (s *OneInch) FetchQuote(ctx context.Context, call domain.QuoteCall, mkt domain.MarketContext) (*domain.NormalizedQuote, error) {
	var resp oneInchResponse

	path := fmt.Sprintf("/%d/quote", call.ChainID)
	params := map[string]string{
		"src":    asset.AggregatorAddress(call.From).Hex(),
		"dst":    asset.AggregatorAddress(call.To).Hex(),
		"amount": call.AmountIn.Raw().String(),
	}

	if err := s.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	output, err := amountFromRaw(resp.DstAmount, call.To)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(SourceOneInch))
	}

	return newQuote(SourceOneInch, call, output,
		parseFlexibleUint(resp.EstimatedGas),
		parseOneInchProtocols(resp.Protocols),
		mkt), nil
}

// parseFlexibleUint handles fields that arrive as either "123" or 123.
func parseFlexibleUint(raw json.RawMessage) uint64 {
	if len(raw) == 0 {
		return 0
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var parsed uint64
		if _, err := fmt.Sscanf(s, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

// parseOneInchProtocols flattens the nested route structure:
// protocols is a list of routes, each a list of hops, each a list of pools.
func parseOneInchProtocols(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var routes [][][]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil
	}

	var names []string
	for _, route := range routes {
		for _, hop := range route {
			for _, pool := range hop {
				if pool.Name != "" {
					names = append(names, pool.Name)
				}
			}
		}
	}
	return dedupe(names)
}
