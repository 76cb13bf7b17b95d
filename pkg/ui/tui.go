// Package ui provides the Bubble Tea TUI for watch mode.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the watch dashboard.
type Model struct {
	keys KeyMap

	// Trade being watched
	pair  string
	chain string

	// State
	ready      bool
	quitting   bool
	paused     bool
	refreshing bool
	width      int
	height     int

	// Live data
	lastPrice    decimal.Decimal
	priceSymbol  string
	priceAt      time.Time
	gasGwei      decimal.Decimal
	comparison   *QuotesMsg
	streamStates map[string]bool
	errors       []ErrorEntry // last 3
}

// New creates a new watch dashboard model.
func New(pair, chain string) Model {
	return Model{
		keys:         DefaultKeyMap(),
		pair:         pair,
		chain:        chain,
		streamStates: map[string]bool{"Binance": false},
		errors:       make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if OnRefresh != nil && !m.refreshing {
				m.refreshing = true
				go OnRefresh()
			}
			return m, nil
		case "p":
			m.paused = !m.paused
			return m, nil
		case "e":
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case PriceUpdateMsg:
		if !m.paused {
			m.lastPrice = msg.Price
			m.priceSymbol = msg.Symbol
			m.priceAt = msg.Timestamp
		}

	case GasPriceMsg:
		m.gasGwei = msg.Gwei

	case QuotesMsg:
		m.refreshing = false
		if !m.paused {
			copied := msg
			m.comparison = &copied
		}

	case ConnectionStatusMsg:
		m.streamStates[msg.Name] = msg.Connected

	case ErrorMsg:
		m.refreshing = false
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	title := TitleStyle.Render(fmt.Sprintf(" DEX Router — %s (%s) ", m.pair, m.chain))
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	routes := m.renderRoutes()
	width := m.width
	if width <= 0 {
		width = 100
	}
	b.WriteString(BoxStyle.Width(width - 4).Render(routes))
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(NegativeValue.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(WarnValue.Bold(true).Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render("q: quit • r: refresh • p: pause • e: clear errors"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.refreshing {
		spinners := []string{"◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/200) % len(spinners)
		parts = append(parts, WarnValue.Render(spinners[idx]+" Fetching quotes"))
	}

	if !m.lastPrice.IsZero() {
		parts = append(parts, fmt.Sprintf("%s: $%s", m.priceSymbol, m.lastPrice.StringFixed(2)))
	}

	if !m.gasGwei.IsZero() {
		parts = append(parts, fmt.Sprintf("Gas: %s gwei", m.gasGwei.StringFixed(1)))
	}

	for name, connected := range m.streamStates {
		if connected {
			parts = append(parts, StatusConnected.Render("● "+name))
		} else {
			parts = append(parts, StatusDisconnected.Render("○ "+name+" (REST)"))
		}
	}

	if m.comparison != nil {
		ago := time.Since(m.comparison.FetchedAt).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Quotes: %s ago (%dms)",
			ago, m.comparison.Elapsed.Milliseconds())))
	}

	return strings.Join(parts, "  │  ")
}

func (m Model) renderRoutes() string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render("RANKED ROUTES"))
	sb.WriteString("\n\n")

	if m.comparison == nil || m.comparison.Comparison == nil {
		sb.WriteString(MutedValue.Render("  Waiting for first quote refresh..."))
		return sb.String()
	}

	c := m.comparison.Comparison

	sb.WriteString(fmt.Sprintf("  %-4s %-10s  %16s  %14s  %10s  %8s\n",
		"Rank", "Source", "Output", "Effective", "Gas (USD)", "Score"))
	sb.WriteString(MutedValue.Render("  " + strings.Repeat("─", 70)))
	sb.WriteString("\n")

	for _, a := range c.AllRoutes {
		style := MutedValue
		marker := " "
		if a.Rank == 1 {
			style = PositiveValue
			marker = "★"
		}
		line := fmt.Sprintf("  %s#%-3d %-10s  %16s  %14s  %10s  %7s\n",
			marker, a.Rank, a.Quote.Source,
			a.Quote.OutputAmount.StringFixed(2),
			a.Quote.EffectiveRate.StringFixed(2),
			"$"+a.Quote.GasCostUSD.StringFixed(2),
			a.Score.StringFixed(1),
		)
		sb.WriteString(style.Render(line))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Spread: %s%%  ", c.PriceSpreadPct.StringFixed(2)))
	sb.WriteString(WarnValue.Render(c.Recommendation))
	sb.WriteString("\n")

	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnRefresh is called when the user requests an immediate quote refresh.
// Set by main before the program starts.
var OnRefresh func()

// Run starts the Bubble Tea program.
func Run(pair, chain string) error {
	Program = tea.NewProgram(New(pair, chain), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
