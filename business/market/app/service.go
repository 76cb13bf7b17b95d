package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/internal/cache"
	"github.com/fd1az/dex-router/internal/logger"
)

// ServiceConfig holds market service tuning and static fallbacks.
type ServiceConfig struct {
	PriceTTL           time.Duration
	GasTTL             time.Duration
	StaticNativePrice  decimal.Decimal
	StaticGasPriceGwei decimal.Decimal
}

// Service serves native price and gas price with caching and fallbacks.
// Lookups never fail: when a live source errors the static estimate is
// returned, so a missing API key or RPC only degrades accuracy.
type Service struct {
	price  PriceSource
	gas    GasSource
	config ServiceConfig
	logger logger.LoggerInterface

	priceCache *cache.Cache[string, decimal.Decimal]
	gasCache   *cache.Cache[string, decimal.Decimal]
}

// NewService creates the market service. Either source may be nil,
// which pins the corresponding value to its static fallback.
func NewService(price PriceSource, gas GasSource, cfg ServiceConfig, log logger.LoggerInterface) *Service {
	if cfg.PriceTTL <= 0 {
		cfg.PriceTTL = 30 * time.Second
	}
	if cfg.GasTTL <= 0 {
		cfg.GasTTL = 12 * time.Second
	}

	return &Service{
		price:      price,
		gas:        gas,
		config:     cfg,
		logger:     log,
		priceCache: cache.New[string, decimal.Decimal](5 * time.Minute),
		gasCache:   cache.New[string, decimal.Decimal](5 * time.Minute),
	}
}

// NativePriceUSD returns the native coin's USD price.
func (s *Service) NativePriceUSD(ctx context.Context) decimal.Decimal {
	if s.price == nil {
		return s.config.StaticNativePrice
	}

	price, err := s.priceCache.GetOrCompute(ctx, "native", s.config.PriceTTL,
		func(ctx context.Context) (decimal.Decimal, error) {
			p, err := s.price.NativePrice(ctx)
			if err != nil {
				return decimal.Zero, err
			}
			return p.Price, nil
		})
	if err != nil {
		s.logger.Warn(ctx, "native price fetch failed, using static fallback",
			"fallback", s.config.StaticNativePrice,
			"error", err)
		return s.config.StaticNativePrice
	}

	return price
}

// GasPriceGwei returns the current gas price in gwei.
func (s *Service) GasPriceGwei(ctx context.Context) decimal.Decimal {
	if s.gas == nil {
		return s.config.StaticGasPriceGwei
	}

	gwei, err := s.gasCache.GetOrCompute(ctx, "gas", s.config.GasTTL,
		func(ctx context.Context) (decimal.Decimal, error) {
			g, err := s.gas.GasPrice(ctx)
			if err != nil {
				return decimal.Zero, err
			}
			return g.Gwei(), nil
		})
	if err != nil {
		s.logger.Warn(ctx, "gas price fetch failed, using static fallback",
			"fallback", s.config.StaticGasPriceGwei,
			"error", err)
		return s.config.StaticGasPriceGwei
	}

	return gwei
}

// Snapshot returns both market inputs at once.
func (s *Service) Snapshot(ctx context.Context) domain.NativePrice {
	return domain.NativePrice{
		Price:     s.NativePriceUSD(ctx),
		Timestamp: time.Now(),
	}
}

// Close releases cache resources.
func (s *Service) Close() {
	s.priceCache.Close()
	s.gasCache.Close()
}
