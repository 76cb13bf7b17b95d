// Package ui provides the Bubble Tea TUI for watch mode.
package ui

import (
	"time"

	"github.com/shopspring/decimal"

	routingDomain "github.com/fd1az/dex-router/business/routing/domain"
)

// Message types for TUI updates

// PriceUpdateMsg is sent on every tick of the live price stream.
type PriceUpdateMsg struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// QuotesMsg is sent when a quote refresh completes.
type QuotesMsg struct {
	Comparison *routingDomain.RouteComparison
	FetchedAt  time.Time
	Elapsed    time.Duration
}

// GasPriceMsg is sent when the gas price is refreshed.
type GasPriceMsg struct {
	Gwei decimal.Decimal
}

// ConnectionStatusMsg is sent when the price stream state changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
}

// ErrorMsg is sent when a refresh fails.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
