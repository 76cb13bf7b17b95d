// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/fd1az/dex-router/business/market/domain"
)

// PriceSource provides the native coin's USD price (Binance).
type PriceSource interface {
	NativePrice(ctx context.Context) (domain.NativePrice, error)
}

// GasSource provides the current network gas price (Ethereum RPC).
type GasSource interface {
	GasPrice(ctx context.Context) (*domain.GasPrice, error)
}
