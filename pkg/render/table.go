package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors match the rest of the TUI.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorGood    = lipgloss.Color("#10B981") // Green
	colorBad     = lipgloss.Color("#EF4444") // Red
	colorWarn    = lipgloss.Color("#F59E0B") // Amber
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

type tableRenderer struct {
	header   lipgloss.Style
	title    lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	warn     lipgloss.Style
	muted    lipgloss.Style
}

func newTableRenderer(noColor bool) *tableRenderer {
	if noColor {
		plain := lipgloss.NewStyle()
		return &tableRenderer{
			header:   plain,
			title:    plain,
			positive: plain,
			negative: plain,
			warn:     plain,
			muted:    plain,
		}
	}
	return &tableRenderer{
		header:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorPrimary).Padding(0, 1),
		positive: lipgloss.NewStyle().Foreground(colorGood),
		negative: lipgloss.NewStyle().Foreground(colorBad),
		warn:     lipgloss.NewStyle().Foreground(colorWarn),
		muted:    lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func (t *tableRenderer) Render(w io.Writer, r *Report) error {
	var b strings.Builder

	title := fmt.Sprintf(" %s %s -> %s (%s) ",
		r.Request.Amount.String(), r.Request.FromToken, r.Request.ToToken, r.Request.Chain)
	b.WriteString(t.title.Render(title))
	b.WriteString("\n\n")

	t.renderQuotes(&b, r)

	if r.Comparison != nil {
		t.renderComparison(&b, r)
	}
	if r.Split != nil {
		t.renderSplit(&b, r)
	}
	if r.MEV != nil {
		t.renderMEV(&b, r)
	}
	if r.SizeAdvice != "" {
		b.WriteString(t.muted.Render("  " + r.SizeAdvice))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (t *tableRenderer) rule(b *strings.Builder, width int) {
	b.WriteString(t.muted.Render("  " + strings.Repeat("─", width)))
	b.WriteString("\n")
}

func (t *tableRenderer) renderQuotes(b *strings.Builder, r *Report) {
	b.WriteString(t.header.Render(fmt.Sprintf("QUOTES (%d sources)", len(r.Quotes))))
	b.WriteString("\n\n")

	fmt.Fprintf(b, "  %-10s  %16s  %14s  %10s  %8s\n",
		"Source", "Output", "Effective", "Gas (USD)", "Impact")
	t.rule(b, 66)

	for _, q := range r.Quotes {
		fmt.Fprintf(b, "  %-10s  %16s  %14s  %10s  %7s%%\n",
			q.Source,
			q.OutputAmount.StringFixed(2)+" "+q.OutputToken,
			q.EffectiveRate.StringFixed(2),
			"$"+q.GasCostUSD.StringFixed(2),
			q.PriceImpactPct.StringFixed(2),
		)
	}
	b.WriteString("\n")
}

func (t *tableRenderer) renderComparison(b *strings.Builder, r *Report) {
	c := r.Comparison

	b.WriteString(t.header.Render("RANKED ROUTES"))
	b.WriteString("\n\n")

	for _, a := range c.AllRoutes {
		marker := "  "
		style := t.muted
		if a.Rank == 1 {
			marker = "★ "
			style = t.positive
		}
		fmt.Fprintf(b, "  %s#%d %-10s  score %s/100  +%s%% vs worst\n",
			marker, a.Rank, a.Quote.Source,
			a.Score.StringFixed(1), a.SavingsPct.StringFixed(2))
		b.WriteString(style.Render("       " + a.Recommendation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  Price spread: %s%%\n", c.PriceSpreadPct.StringFixed(2))
	b.WriteString(t.warn.Render("  " + c.Recommendation))
	b.WriteString("\n\n")
}

func (t *tableRenderer) renderSplit(b *strings.Builder, r *Report) {
	s := r.Split

	b.WriteString(t.header.Render("SPLIT ORDER ANALYSIS"))
	b.WriteString("\n\n")

	fmt.Fprintf(b, "  %-10s  %8s  %16s  %16s  %8s\n",
		"Venue", "Share", "Input", "Expected out", "Impact")
	t.rule(b, 68)

	for _, a := range s.Allocations {
		fmt.Fprintf(b, "  %-10s  %7s%%  %16s  %16s  %7s%%\n",
			a.Source,
			a.Percentage.StringFixed(1),
			a.InputAmount.StringFixed(4),
			a.ExpectedOutput.StringFixed(2),
			a.PriceImpactPct.StringFixed(2),
		)
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  Split output:  %s\n", s.TotalOutput.StringFixed(2))
	fmt.Fprintf(b, "  Single venue:  %s\n", s.SingleVenueOutput.StringFixed(2))
	fmt.Fprintf(b, "  Total gas:     $%s\n", s.TotalGasCostUSD.StringFixed(2))

	benefitStyle := t.negative
	if s.IsSplitBeneficial {
		benefitStyle = t.positive
	}
	b.WriteString(benefitStyle.Render(fmt.Sprintf("  Net benefit:   %s", s.NetBenefit.StringFixed(2))))
	b.WriteString("\n")
	b.WriteString(t.warn.Render("  " + s.Recommendation))
	b.WriteString("\n\n")
}

func (t *tableRenderer) renderMEV(b *strings.Builder, r *Report) {
	m := r.MEV

	b.WriteString(t.header.Render("MEV RISK ASSESSMENT"))
	b.WriteString("\n\n")

	levelStyle := t.positive
	switch m.RiskLevel {
	case "MEDIUM":
		levelStyle = t.warn
	case "HIGH", "CRITICAL":
		levelStyle = t.negative
	}

	fmt.Fprintf(b, "  Risk level: %s  (score %s/100)\n",
		levelStyle.Render(string(m.RiskLevel)), m.RiskScore.StringFixed(1))
	fmt.Fprintf(b, "  Estimated exposure: $%s\n\n", m.EstimatedExposureUSD.StringFixed(2))

	for _, f := range m.RiskFactors {
		fmt.Fprintf(b, "  %-18s %5s  %s\n",
			f.Name, f.Score.StringFixed(0), t.muted.Render(f.Description))
	}

	b.WriteString("\n")
	b.WriteString(t.header.Render("  PROTECTION OPTIONS"))
	b.WriteString("\n")
	for _, p := range m.ProtectionOptions {
		fmt.Fprintf(b, "  - %-20s %s%%  %s\n",
			p.Name, p.Effectiveness.StringFixed(0), t.muted.Render(p.TradeOff))
	}

	b.WriteString("\n")
	b.WriteString(levelStyle.Render("  " + m.Recommendation))
	b.WriteString("\n\n")
}
