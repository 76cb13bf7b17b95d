package render

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// csvRenderer emits one row per quote, enriched with rank and score
// when a comparison is present. Split and MEV sections do not fit a
// flat row shape and are omitted.
type csvRenderer struct{}

func (c *csvRenderer) Render(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	header := []string{
		"source", "input_token", "output_token", "input_amount",
		"output_amount", "effective_rate", "price_impact_pct",
		"gas_cost_usd", "protocols", "rank", "score",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rankBySource := map[string]int{}
	scoreBySource := map[string]string{}
	if r.Comparison != nil {
		for _, a := range r.Comparison.AllRoutes {
			rankBySource[a.Quote.Source] = a.Rank
			scoreBySource[a.Quote.Source] = a.Score.StringFixed(1)
		}
	}

	for _, q := range r.Quotes {
		rank := ""
		if n, ok := rankBySource[q.Source]; ok {
			rank = strconv.Itoa(n)
		}

		row := []string{
			q.Source,
			q.InputToken,
			q.OutputToken,
			q.InputAmount.String(),
			q.OutputAmount.String(),
			q.EffectiveRate.String(),
			q.PriceImpactPct.String(),
			q.GasCostUSD.String(),
			strings.Join(q.Protocols, "|"),
			rank,
			scoreBySource[q.Source],
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
