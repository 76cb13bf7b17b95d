package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/asset"
	"github.com/fd1az/dex-router/internal/logger"
)

const (
	tracerName = "quotes"
	meterName  = "quotes"

	// DefaultSourceTimeout bounds each source call independently.
	DefaultSourceTimeout = 10 * time.Second
)

// FetcherConfig holds Fetcher tuning.
type FetcherConfig struct {
	SourceTimeout time.Duration
	QuoteValidity time.Duration
}

// fetcherMetrics holds OTEL metric instruments.
type fetcherMetrics struct {
	quotesFetched metric.Int64Counter
	sourceErrors  metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// Fetcher aggregates quotes from all configured sources in parallel.
// One failing or slow source never blocks the others: each call runs in
// its own goroutine under its own timeout.
type Fetcher struct {
	sources []AggregatorSource
	market  MarketData
	assets  *asset.Registry
	config  FetcherConfig
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *fetcherMetrics
}

// NewFetcher creates a Fetcher over the given sources.
func NewFetcher(
	sources []AggregatorSource,
	market MarketData,
	assets *asset.Registry,
	cfg FetcherConfig,
	log logger.LoggerInterface,
) (*Fetcher, error) {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.QuoteValidity <= 0 {
		cfg.QuoteValidity = domain.DefaultValidity
	}

	f := &Fetcher{
		sources: sources,
		market:  market,
		assets:  assets,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := f.initMetrics(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Fetcher) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	f.metrics = &fetcherMetrics{}

	f.metrics.quotesFetched, err = meter.Int64Counter(
		"quotes_fetched_total",
		metric.WithDescription("Quotes successfully fetched per source"),
	)
	if err != nil {
		return err
	}

	f.metrics.sourceErrors, err = meter.Int64Counter(
		"quote_source_errors_total",
		metric.WithDescription("Failed quote fetches per source"),
	)
	if err != nil {
		return err
	}

	f.metrics.fetchDuration, err = meter.Float64Histogram(
		"quote_fetch_duration_seconds",
		metric.WithDescription("Per-source quote fetch latency"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Resolve resolves both token references in the request.
func (f *Fetcher) Resolve(req domain.SwapRequest) (domain.QuoteCall, error) {
	if err := req.Validate(); err != nil {
		return domain.QuoteCall{}, err
	}

	chainID := req.ChainID()

	from, err := f.assets.Resolve(chainID, req.FromToken)
	if err != nil {
		return domain.QuoteCall{}, err
	}
	to, err := f.assets.Resolve(chainID, req.ToToken)
	if err != nil {
		return domain.QuoteCall{}, err
	}

	amountIn, err := asset.ParseDecimal(from, req.Amount)
	if err != nil {
		return domain.QuoteCall{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(req.Amount.String()))
	}

	return domain.QuoteCall{
		Chain:       req.Chain,
		ChainID:     chainID,
		From:        from,
		To:          to,
		AmountIn:    amountIn,
		SlippagePct: req.SlippagePct,
	}, nil
}

// FetchAll fans out to every source supporting the chain and collects the
// quotes that came back in time. Per-source failures are logged and counted,
// never propagated. Returns CodeNoQuotes when every source failed.
func (f *Fetcher) FetchAll(ctx context.Context, req domain.SwapRequest) ([]*domain.NormalizedQuote, error) {
	ctx, span := f.tracer.Start(ctx, "quotes.fetch_all",
		trace.WithAttributes(
			attribute.String("from", req.FromToken),
			attribute.String("to", req.ToToken),
			attribute.String("chain", req.Chain),
		),
	)
	defer span.End()

	call, err := f.Resolve(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	mkt := domain.MarketContext{
		NativePriceUSD: f.market.NativePriceUSD(ctx),
		GasPriceGwei:   f.market.GasPriceGwei(ctx),
	}

	type result struct {
		quote *domain.NormalizedQuote
		err   error
		name  string
	}

	eligible := make([]AggregatorSource, 0, len(f.sources))
	for _, src := range f.sources {
		if src.SupportsChain(call.ChainID) {
			eligible = append(eligible, src)
		}
	}

	results := make(chan result, len(eligible))
	var wg sync.WaitGroup

	for _, src := range eligible {
		wg.Add(1)
		go func(src AggregatorSource) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, f.config.SourceTimeout)
			defer cancel()

			start := time.Now()
			quote, err := src.FetchQuote(srcCtx, call, mkt)
			f.metrics.fetchDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attribute.String("source", src.Name())))

			results <- result{quote: quote, err: err, name: src.Name()}
		}(src)
	}

	wg.Wait()
	close(results)

	quotes := make([]*domain.NormalizedQuote, 0, len(eligible))
	for res := range results {
		if res.err != nil {
			f.metrics.sourceErrors.Add(ctx, 1,
				metric.WithAttributes(attribute.String("source", res.name)))
			f.logger.Warn(ctx, "quote source failed",
				"source", res.name,
				"error", res.err)
			continue
		}
		if res.quote == nil {
			continue
		}

		res.quote.ValidFor = f.config.QuoteValidity
		quotes = append(quotes, res.quote)

		f.metrics.quotesFetched.Add(ctx, 1,
			metric.WithAttributes(attribute.String("source", res.name)))
	}

	if len(quotes) == 0 {
		return nil, apperror.New(apperror.CodeNoQuotes,
			apperror.WithContext(req.Chain))
	}

	f.logger.Debug(ctx, "quotes fetched",
		"count", len(quotes),
		"sources", len(eligible))

	return quotes, nil
}

// Sources returns the names of all configured sources.
func (f *Fetcher) Sources() []string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return names
}
