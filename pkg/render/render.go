// Package render formats router results for the terminal. All numbers
// arrive pre-calculated from the domain; nothing here does math beyond
// string formatting.
package render

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	mevDomain "github.com/fd1az/dex-router/business/mev/domain"
	quotesDomain "github.com/fd1az/dex-router/business/quotes/domain"
	routingDomain "github.com/fd1az/dex-router/business/routing/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or csv)", s)
	}
}

// RequestSummary echoes the trade being reported on.
type RequestSummary struct {
	FromToken string
	ToToken   string
	Amount    decimal.Decimal
	Chain     string
}

// Report aggregates everything a single router run produced. Sections
// other than Quotes are optional and skipped when nil.
type Report struct {
	Request    RequestSummary
	Quotes     []*quotesDomain.NormalizedQuote
	Comparison *routingDomain.RouteComparison
	Split      *routingDomain.SplitRecommendation
	MEV        *mevDomain.Assessment
	SizeAdvice string
}

// Renderer writes a report to w in one format.
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// New returns the renderer for the format. noColor strips ANSI styling
// from the table renderer and is ignored by the others.
func New(format Format, noColor bool) (Renderer, error) {
	switch format {
	case FormatTable:
		return newTableRenderer(noColor), nil
	case FormatJSON:
		return &jsonRenderer{}, nil
	case FormatCSV:
		return &csvRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
