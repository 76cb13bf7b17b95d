// Package ui provides the Bubble Tea TUI for watch mode.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorGood    = lipgloss.Color("#10B981") // Green
	ColorDanger  = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorBorder  = lipgloss.Color("#374151") // Dark gray
)

// Styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	StatusConnected = lipgloss.NewStyle().
			Foreground(ColorGood).
			Bold(true)

	StatusDisconnected = lipgloss.NewStyle().
				Foreground(ColorDanger).
				Bold(true)

	PositiveValue = lipgloss.NewStyle().
			Foreground(ColorGood)

	NegativeValue = lipgloss.NewStyle().
			Foreground(ColorDanger)

	WarnValue = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedValue = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)
