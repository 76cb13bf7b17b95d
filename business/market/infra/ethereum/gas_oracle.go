// Package ethereum provides gas price lookup via an Ethereum RPC node.
package ethereum

import (
	"math/big"

	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/circuitbreaker"
	"github.com/fd1az/dex-router/internal/logger"
)

const tracerName = "gas-oracle"

// maxGasPriceWei caps obviously broken RPC answers at 500 gwei.
var maxGasPriceWei = new(big.Int).Mul(big.NewInt(500), big.NewInt(1_000_000_000))

// GasOracle fetches the suggested gas price from an Ethereum node.
// Caching lives in the market service; the oracle only guards the RPC
// with a circuit breaker and a sanity cap.
type GasOracle struct {
	client *ethclient.Client
	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[*big.Int]
	tracer trace.Tracer
}

// NewGasOracle creates a gas oracle over an existing RPC client.
func NewGasOracle(client *ethclient.Client, log logger.LoggerInterface) *GasOracle {
	return &GasOracle{
		client: client,
		logger: log,
		cb:     circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer: otel.Tracer(tracerName),
	}
}

// GasPrice implements app.GasSource.
func (g *GasOracle) GasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.suggest_price")
	defer span.End()

	if g.client == nil {
		err := apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithContext("no RPC client configured"))
		span.RecordError(err)
		return nil, err
	}

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeGasPriceFetchFailed,
			apperror.WithCause(err))
	}

	if wei.Cmp(maxGasPriceWei) > 0 {
		g.logger.Warn(ctx, "gas price exceeds sanity cap", "wei", wei.String())
		wei = maxGasPriceWei
	}

	price := domain.NewGasPrice(wei)

	span.SetAttributes(attribute.String("gwei", price.Gwei().String()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}
