package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	quotesDomain "github.com/fd1az/dex-router/business/quotes/domain"
	routingDomain "github.com/fd1az/dex-router/business/routing/domain"
)

func sampleReport() *Report {
	q := &quotesDomain.NormalizedQuote{
		Source:         "1inch",
		InputToken:     "ETH",
		OutputToken:    "USDC",
		InputAmount:    decimal.NewFromInt(10),
		OutputAmount:   decimal.RequireFromString("25432.18"),
		Price:          decimal.RequireFromString("2543.218"),
		PriceImpactPct: decimal.RequireFromString("0.12"),
		GasEstimate:    150_000,
		GasCostUSD:     decimal.RequireFromString("11.25"),
		EffectiveRate:  decimal.RequireFromString("2542.093"),
		Protocols:      []string{"Uniswap V3", "Curve"},
		Timestamp:      time.Now(),
	}

	best := &routingDomain.RouteAnalysis{
		Quote:          q,
		Rank:           1,
		Score:          decimal.NewFromInt(95),
		Recommendation: "BEST CHOICE - Optimal price and efficiency",
	}

	return &Report{
		Request: RequestSummary{
			FromToken: "ETH",
			ToToken:   "USDC",
			Amount:    decimal.NewFromInt(10),
			Chain:     "ethereum",
		},
		Quotes: []*quotesDomain.NormalizedQuote{q},
		Comparison: &routingDomain.RouteComparison{
			BestRoute:   best,
			AllRoutes:   []*routingDomain.RouteAnalysis{best},
			TotalQuotes: 1,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "csv"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(FormatJSON, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	cmp, ok := out["comparison"].(map[string]any)
	if !ok {
		t.Fatal("missing comparison section")
	}
	if cmp["best_source"] != "1inch" {
		t.Errorf("best_source = %v, want 1inch", cmp["best_source"])
	}

	// Decimals must serialize as strings, not floats.
	quotes := out["quotes"].([]any)
	first := quotes[0].(map[string]any)
	if _, ok := first["output_amount"].(string); !ok {
		t.Errorf("output_amount serialized as %T, want string", first["output_amount"])
	}
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(FormatCSV, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one quote row, got %d records", len(records))
	}
	row := records[1]
	if row[0] != "1inch" || row[8] != "Uniswap V3|Curve" || row[9] != "1" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestTableRendererPlain(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(FormatTable, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "1inch") || !strings.Contains(out, "QUOTES") {
		t.Errorf("table output missing expected content:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("no-color output still contains ANSI escapes")
	}
}
