// Package domain contains market data types: native coin price and gas price.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// NativePrice is the USD price of a chain's native coin.
type NativePrice struct {
	Symbol    string // exchange symbol, e.g. "ETHUSDC"
	Price     decimal.Decimal
	Timestamp time.Time
}

// Age returns how old the observation is.
func (p NativePrice) Age() time.Duration {
	return time.Since(p.Timestamp)
}

// GasPrice is an observed network gas price.
type GasPrice struct {
	wei *big.Int
	at  time.Time
}

// NewGasPrice creates a GasPrice from a wei value.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		wei: new(big.Int).Set(wei),
		at:  time.Now(),
	}
}

// Wei returns a copy of the raw wei value.
func (g *GasPrice) Wei() *big.Int {
	return new(big.Int).Set(g.wei)
}

// Gwei returns the gas price in gwei.
func (g *GasPrice) Gwei() decimal.Decimal {
	return decimal.NewFromBigInt(g.wei, -9)
}

// Timestamp returns when the price was observed.
func (g *GasPrice) Timestamp() time.Time {
	return g.at
}
