// Package binance provides native price lookup via Binance REST and WebSocket.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/httpclient"
	"github.com/fd1az/dex-router/internal/logger"
)

const (
	tracerName = "binance"

	tickerEndpoint = "/api/v3/ticker/price"
	httpTimeout    = 10 * time.Second
)

// HTTPClientConfig holds configuration for the Binance REST client.
type HTTPClientConfig struct {
	BaseURL string
	Symbol  string // e.g. "ETHUSDC"
}

// HTTPClient fetches spot prices from the Binance REST API.
type HTTPClient struct {
	client httpclient.Client
	config HTTPClientConfig
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewHTTPClient creates a new Binance REST client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(httpTimeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPClient{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
	}, nil
}

// tickerResponse is the /api/v3/ticker/price response.
type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// NativePrice implements app.PriceSource via the spot ticker endpoint.
func (c *HTTPClient) NativePrice(ctx context.Context) (domain.NativePrice, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.ticker_price",
		trace.WithAttributes(attribute.String("symbol", c.config.Symbol)),
	)
	defer span.End()

	var result tickerResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "ticker"),
			httpclient.NewLabel("symbol", c.config.Symbol),
		),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetQueryParam("symbol", c.config.Symbol).
		SetResult(&result).
		Get(ctx, tickerEndpoint)

	if err != nil {
		span.RecordError(err)
		return domain.NativePrice{}, apperror.New(apperror.CodeBinanceAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch ticker price"))
	}

	if resp.IsError() {
		return domain.NativePrice{}, apperror.New(apperror.CodeBinanceAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	price, err := decimal.NewFromString(result.Price)
	if err != nil {
		return domain.NativePrice{}, apperror.New(apperror.CodePriceFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(result.Price))
	}

	span.SetAttributes(attribute.String("price", price.String()))
	c.logger.Debug(ctx, "fetched ticker price",
		"symbol", c.config.Symbol,
		"price", price)

	return domain.NativePrice{
		Symbol:    c.config.Symbol,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

// BinanceAPIError represents an error response from Binance API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr BinanceAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
