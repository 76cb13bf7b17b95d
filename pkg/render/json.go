package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// JSON view types. Field names are stable output contract; decimals
// serialize as strings to avoid float rounding on the consumer side.

type jsonQuote struct {
	Source         string          `json:"source"`
	InputToken     string          `json:"input_token"`
	OutputToken    string          `json:"output_token"`
	InputAmount    decimal.Decimal `json:"input_amount"`
	OutputAmount   decimal.Decimal `json:"output_amount"`
	Price          decimal.Decimal `json:"price"`
	PriceImpactPct decimal.Decimal `json:"price_impact_pct"`
	GasEstimate    uint64          `json:"gas_estimate"`
	GasCostUSD     decimal.Decimal `json:"gas_cost_usd"`
	EffectiveRate  decimal.Decimal `json:"effective_rate"`
	Protocols      []string        `json:"protocols"`
	Timestamp      time.Time       `json:"timestamp"`
}

type jsonRoute struct {
	Rank           int             `json:"rank"`
	Source         string          `json:"source"`
	Score          decimal.Decimal `json:"score"`
	SavingsVsWorst decimal.Decimal `json:"savings_vs_worst"`
	SavingsPct     decimal.Decimal `json:"savings_pct"`
	Recommendation string          `json:"recommendation"`
}

type jsonComparison struct {
	BestSource     string          `json:"best_source"`
	TotalQuotes    int             `json:"total_quotes"`
	PriceSpreadPct decimal.Decimal `json:"price_spread_pct"`
	Recommendation string          `json:"recommendation"`
	Routes         []jsonRoute     `json:"routes"`
}

type jsonAllocation struct {
	Source         string          `json:"source"`
	Percentage     decimal.Decimal `json:"percentage"`
	InputAmount    decimal.Decimal `json:"input_amount"`
	ExpectedOutput decimal.Decimal `json:"expected_output"`
	PriceImpactPct decimal.Decimal `json:"price_impact_pct"`
	GasCostUSD     decimal.Decimal `json:"gas_cost_usd"`
}

type jsonSplit struct {
	Allocations       []jsonAllocation `json:"allocations"`
	TotalInput        decimal.Decimal  `json:"total_input"`
	TotalOutput       decimal.Decimal  `json:"total_output"`
	SingleVenueOutput decimal.Decimal  `json:"single_venue_output"`
	ImprovementPct    decimal.Decimal  `json:"improvement_pct"`
	TotalGasCostUSD   decimal.Decimal  `json:"total_gas_cost_usd"`
	NetBenefit        decimal.Decimal  `json:"net_benefit"`
	IsSplitBeneficial bool             `json:"is_split_beneficial"`
	Recommendation    string           `json:"recommendation"`
}

type jsonRiskFactor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Score       decimal.Decimal `json:"score"`
	Weight      decimal.Decimal `json:"weight"`
}

type jsonProtection struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Effectiveness decimal.Decimal `json:"effectiveness"`
	TradeOff      string          `json:"trade_off"`
	URL           string          `json:"url,omitempty"`
}

type jsonMEV struct {
	RiskLevel            string           `json:"risk_level"`
	RiskScore            decimal.Decimal  `json:"risk_score"`
	EstimatedExposureUSD decimal.Decimal  `json:"estimated_exposure_usd"`
	RiskFactors          []jsonRiskFactor `json:"risk_factors"`
	ProtectionOptions    []jsonProtection `json:"protection_options"`
	Recommendation       string           `json:"recommendation"`
}

type jsonReport struct {
	Request struct {
		FromToken string          `json:"from_token"`
		ToToken   string          `json:"to_token"`
		Amount    decimal.Decimal `json:"amount"`
		Chain     string          `json:"chain"`
	} `json:"request"`
	Quotes     []jsonQuote     `json:"quotes"`
	Comparison *jsonComparison `json:"comparison,omitempty"`
	Split      *jsonSplit      `json:"split,omitempty"`
	MEV        *jsonMEV        `json:"mev,omitempty"`
	SizeAdvice string          `json:"size_advice,omitempty"`
}

type jsonRenderer struct{}

func (j *jsonRenderer) Render(w io.Writer, r *Report) error {
	out := jsonReport{SizeAdvice: r.SizeAdvice}
	out.Request.FromToken = r.Request.FromToken
	out.Request.ToToken = r.Request.ToToken
	out.Request.Amount = r.Request.Amount
	out.Request.Chain = r.Request.Chain

	for _, q := range r.Quotes {
		out.Quotes = append(out.Quotes, jsonQuote{
			Source:         q.Source,
			InputToken:     q.InputToken,
			OutputToken:    q.OutputToken,
			InputAmount:    q.InputAmount,
			OutputAmount:   q.OutputAmount,
			Price:          q.Price,
			PriceImpactPct: q.PriceImpactPct,
			GasEstimate:    q.GasEstimate,
			GasCostUSD:     q.GasCostUSD,
			EffectiveRate:  q.EffectiveRate,
			Protocols:      q.Protocols,
			Timestamp:      q.Timestamp,
		})
	}

	if c := r.Comparison; c != nil {
		jc := &jsonComparison{
			BestSource:     c.BestRoute.Quote.Source,
			TotalQuotes:    c.TotalQuotes,
			PriceSpreadPct: c.PriceSpreadPct,
			Recommendation: c.Recommendation,
		}
		for _, a := range c.AllRoutes {
			jc.Routes = append(jc.Routes, jsonRoute{
				Rank:           a.Rank,
				Source:         a.Quote.Source,
				Score:          a.Score,
				SavingsVsWorst: a.SavingsVsWorst,
				SavingsPct:     a.SavingsPct,
				Recommendation: a.Recommendation,
			})
		}
		out.Comparison = jc
	}

	if s := r.Split; s != nil {
		js := &jsonSplit{
			TotalInput:        s.TotalInput,
			TotalOutput:       s.TotalOutput,
			SingleVenueOutput: s.SingleVenueOutput,
			ImprovementPct:    s.ImprovementPct,
			TotalGasCostUSD:   s.TotalGasCostUSD,
			NetBenefit:        s.NetBenefit,
			IsSplitBeneficial: s.IsSplitBeneficial,
			Recommendation:    s.Recommendation,
		}
		for _, a := range s.Allocations {
			js.Allocations = append(js.Allocations, jsonAllocation{
				Source:         a.Source,
				Percentage:     a.Percentage,
				InputAmount:    a.InputAmount,
				ExpectedOutput: a.ExpectedOutput,
				PriceImpactPct: a.PriceImpactPct,
				GasCostUSD:     a.GasCostUSD,
			})
		}
		out.Split = js
	}

	if m := r.MEV; m != nil {
		jm := &jsonMEV{
			RiskLevel:            string(m.RiskLevel),
			RiskScore:            m.RiskScore,
			EstimatedExposureUSD: m.EstimatedExposureUSD,
			Recommendation:       m.Recommendation,
		}
		for _, f := range m.RiskFactors {
			jm.RiskFactors = append(jm.RiskFactors, jsonRiskFactor{
				Name:        f.Name,
				Description: f.Description,
				Score:       f.Score,
				Weight:      f.Weight,
			})
		}
		for _, p := range m.ProtectionOptions {
			jm.ProtectionOptions = append(jm.ProtectionOptions, jsonProtection{
				Name:          p.Name,
				Description:   p.Description,
				Effectiveness: p.Effectiveness,
				TradeOff:      p.TradeOff,
				URL:           p.URL,
			})
		}
		out.MEV = jm
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
