package app

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/internal/logger"
)

type fakePriceSource struct {
	price decimal.Decimal
	err   error
	calls int
}

func (f *fakePriceSource) NativePrice(context.Context) (domain.NativePrice, error) {
	f.calls++
	if f.err != nil {
		return domain.NativePrice{}, f.err
	}
	return domain.NativePrice{Symbol: "ETHUSDC", Price: f.price, Timestamp: time.Now()}, nil
}

type fakeGasSource struct {
	wei *big.Int
	err error
}

func (f *fakeGasSource) GasPrice(context.Context) (*domain.GasPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewGasPrice(f.wei), nil
}

func staticConfig() ServiceConfig {
	return ServiceConfig{
		StaticNativePrice:  decimal.NewFromInt(2500),
		StaticGasPriceGwei: decimal.NewFromInt(30),
	}
}

func TestNilSourcesPinStaticValues(t *testing.T) {
	s := NewService(nil, nil, staticConfig(), logger.Nop())
	defer s.Close()

	ctx := context.Background()
	if got := s.NativePriceUSD(ctx); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("native price %s, want static 2500", got)
	}
	if got := s.GasPriceGwei(ctx); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("gas price %s, want static 30", got)
	}
}

func TestFailingSourcesFallBackToStatic(t *testing.T) {
	price := &fakePriceSource{err: errors.New("binance down")}
	gas := &fakeGasSource{err: errors.New("rpc down")}

	s := NewService(price, gas, staticConfig(), logger.Nop())
	defer s.Close()

	ctx := context.Background()
	if got := s.NativePriceUSD(ctx); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("native price %s, want fallback 2500", got)
	}
	if got := s.GasPriceGwei(ctx); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("gas price %s, want fallback 30", got)
	}
}

func TestLiveSourcesWinOverStatic(t *testing.T) {
	price := &fakePriceSource{price: decimal.RequireFromString("2612.44")}
	gas := &fakeGasSource{wei: big.NewInt(25_000_000_000)} // 25 gwei

	s := NewService(price, gas, staticConfig(), logger.Nop())
	defer s.Close()

	ctx := context.Background()
	if got := s.NativePriceUSD(ctx); !got.Equal(decimal.RequireFromString("2612.44")) {
		t.Errorf("native price %s, want live 2612.44", got)
	}
	if got := s.GasPriceGwei(ctx); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("gas price %s, want live 25", got)
	}
}

func TestNativePriceIsCachedWithinTTL(t *testing.T) {
	price := &fakePriceSource{price: decimal.NewFromInt(2600)}
	cfg := staticConfig()
	cfg.PriceTTL = time.Minute

	s := NewService(price, nil, cfg, logger.Nop())
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.NativePriceUSD(ctx)
	}

	if price.calls != 1 {
		t.Errorf("source called %d times within TTL, want 1", price.calls)
	}
}
