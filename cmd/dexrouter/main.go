// Package main is the entry point for the DEX aggregator router CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/market"
	marketDI "github.com/fd1az/dex-router/business/market/di"
	marketDomain "github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/business/mev"
	mevDI "github.com/fd1az/dex-router/business/mev/di"
	"github.com/fd1az/dex-router/business/quotes"
	quotesDI "github.com/fd1az/dex-router/business/quotes/di"
	quotesDomain "github.com/fd1az/dex-router/business/quotes/domain"
	"github.com/fd1az/dex-router/business/routing"
	routingDI "github.com/fd1az/dex-router/business/routing/di"
	routingDomain "github.com/fd1az/dex-router/business/routing/domain"
	"github.com/fd1az/dex-router/internal/apm"
	"github.com/fd1az/dex-router/internal/apperror"
	"github.com/fd1az/dex-router/internal/config"
	"github.com/fd1az/dex-router/internal/di"
	"github.com/fd1az/dex-router/internal/health"
	"github.com/fd1az/dex-router/internal/logger"
	"github.com/fd1az/dex-router/internal/metrics"
	"github.com/fd1az/dex-router/internal/monolith"
	"github.com/fd1az/dex-router/pkg/render"
	"github.com/fd1az/dex-router/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	chain      string
	slippage   float64
	compare    bool
	routes     bool
	split      bool
	mevCheck   bool
	volatile   bool
	full       bool
	output     string
	noColor    bool
	watch      bool
	ethPrice   float64
	gasPrice   float64
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.chain, "chain", "", "Chain to quote on (ethereum, arbitrum, polygon, optimism)")
	flag.Float64Var(&opts.slippage, "slippage", 0, "Slippage tolerance in percent")
	flag.BoolVar(&opts.compare, "compare", false, "Show full ranked route comparison")
	flag.BoolVar(&opts.routes, "routes", false, "Alias for -compare")
	flag.BoolVar(&opts.split, "split", false, "Show split order analysis")
	flag.BoolVar(&opts.mevCheck, "mev-check", false, "Show MEV risk assessment")
	flag.BoolVar(&opts.volatile, "volatile", false, "Treat the pair as volatile for MEV scoring")
	flag.BoolVar(&opts.full, "full", false, "Show everything: comparison, split and MEV")
	flag.StringVar(&opts.output, "output", "table", "Output format: table, json or csv")
	flag.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors in table output")
	flag.BoolVar(&opts.watch, "watch", false, "Live dashboard with periodic requoting")
	flag.Float64Var(&opts.ethPrice, "eth-price", 0, "Static native token USD price (disables Binance lookup)")
	flag.Float64Var(&opts.gasPrice, "gas-price", 0, "Static gas price in gwei (disables RPC lookup)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dex-router %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: dexrouter [flags] FROM TO AMOUNT")
		fmt.Fprintln(os.Stderr, "example: dexrouter -full ETH USDC 10")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, opts, flag.Arg(0), flag.Arg(1), flag.Arg(2)); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintln(os.Stderr, appErr.UserMessage())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, fromToken, toToken, rawAmount string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flag overrides
	if opts.chain != "" {
		cfg.Router.DefaultChain = opts.chain
	}
	if opts.slippage > 0 {
		cfg.Router.SlippagePct = opts.slippage
	}
	if opts.ethPrice > 0 {
		cfg.Market.StaticNativePrice = opts.ethPrice
		cfg.Market.BinanceAPIURL = ""
	}
	if opts.gasPrice > 0 {
		cfg.Market.StaticGasPriceGwei = opts.gasPrice
		cfg.Market.EthereumRPCURL = ""
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(rawAmount))
	}

	format, err := render.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	// Setup logger (suppressed entirely in watch mode so the TUI owns the terminal)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if opts.watch {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Health endpoints only make sense for the long-running watch mode
	var healthServer *health.Server
	if opts.watch {
		healthServer = health.NewServer(8081, version)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		}
		defer healthServer.Stop(ctx)
	}

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&market.Module{Stream: opts.watch}, // Must be first - quotes depend on market data
		&quotes.Module{},
		&routing.Module{},
		&mev.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	req := quotesDomain.SwapRequest{
		FromToken:   fromToken,
		ToToken:     toToken,
		Amount:      amount,
		Chain:       cfg.Router.DefaultChain,
		SlippagePct: cfg.Router.SlippageDecimal(),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if opts.watch {
		start := func() error {
			return mono.StartModules(ctx, modules...)
		}
		return runWatch(ctx, mono.Services(), start, req, healthServer)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return runOnce(ctx, mono.Services(), req, opts, format)
}

// runOnce executes a single quote-rank-report cycle.
func runOnce(ctx context.Context, sr di.ServiceRegistry, req quotesDomain.SwapRequest, opts options, format render.Format) error {
	fetcher := quotesDI.GetQuoteFetcher(sr)
	optimizer := routingDI.GetRouteOptimizer(sr)
	splitter := routingDI.GetSplitCalculator(sr)
	assessor := mevDI.GetRiskAssessor(sr)
	marketSvc := marketDI.GetMarketService(sr)

	qs, err := fetcher.FetchAll(ctx, req)
	if err != nil {
		return err
	}

	comparison := optimizer.CompareRoutes(qs)

	nativePrice := marketSvc.NativePriceUSD(ctx)
	tradeValueUSD := req.Amount.Mul(nativePrice)

	// Default mode shows only the winning route; -compare expands the
	// report to every ranked alternative.
	shown := comparison
	if !opts.compare && !opts.routes && !opts.full {
		shown = &routingDomain.RouteComparison{
			BestRoute:      comparison.BestRoute,
			AllRoutes:      comparison.AllRoutes[:1],
			TotalQuotes:    comparison.TotalQuotes,
			PriceSpreadPct: comparison.PriceSpreadPct,
			Recommendation: comparison.Recommendation,
		}
	}

	report := &render.Report{
		Request: render.RequestSummary{
			FromToken: req.FromToken,
			ToToken:   req.ToToken,
			Amount:    req.Amount,
			Chain:     req.Chain,
		},
		Quotes:     qs,
		Comparison: shown,
	}

	if opts.split || opts.full {
		split, err := splitter.CalculateSplit(qs, req.Amount, nativePrice)
		if err != nil {
			return err
		}
		report.Split = split
	}

	if opts.mevCheck || opts.full {
		report.MEV = assessor.AssessRisk(comparison.BestRoute.Quote, tradeValueUSD, opts.volatile)
	}

	if opts.full {
		report.SizeAdvice = optimizer.SizeRecommendation(tradeValueUSD)
	}

	renderer, err := render.New(format, opts.noColor)
	if err != nil {
		return err
	}
	return renderer.Render(os.Stdout, report)
}

// runWatch drives the live dashboard: a WebSocket price stream pushes
// ticks while a background loop refetches and re-ranks quotes.
func runWatch(ctx context.Context, sr di.ServiceRegistry, start func() error, req quotesDomain.SwapRequest, healthServer *health.Server) error {
	// The OnPrice handler must be registered before the module Startup
	// connects the stream.
	streamer := marketDI.GetPriceStreamer(sr)
	if healthServer != nil {
		healthServer.RegisterCheck("binance_stream", func(context.Context) (bool, string) {
			if streamer.Connected() {
				return true, ""
			}
			return false, "websocket disconnected, serving REST fallback"
		})
	}
	streamer.OnPrice(func(p marketDomain.NativePrice) {
		ui.Send(ui.PriceUpdateMsg{
			Symbol:    p.Symbol,
			Price:     p.Price,
			Timestamp: p.Timestamp,
		})
	})

	refresh := func() {
		fetcher := quotesDI.GetQuoteFetcher(sr)
		optimizer := routingDI.GetRouteOptimizer(sr)
		marketSvc := marketDI.GetMarketService(sr)

		started := time.Now()
		qs, err := fetcher.FetchAll(ctx, req)
		if err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			return
		}

		ui.Send(ui.QuotesMsg{
			Comparison: optimizer.CompareRoutes(qs),
			FetchedAt:  time.Now(),
			Elapsed:    time.Since(started),
		})
		ui.Send(ui.GasPriceMsg{Gwei: marketSvc.GasPriceGwei(ctx)})
	}

	ui.OnRefresh = refresh

	pair := req.FromToken + "/" + req.ToToken
	p := tea.NewProgram(ui.New(pair, req.Chain), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		if err := start(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		ui.Send(ui.ConnectionStatusMsg{
			Name:      "Binance",
			Connected: streamer.Connected(),
		})

		refresh()

		ticker := time.NewTicker(quotesDomain.DefaultValidity)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				refresh()
			case <-ctx.Done():
				errCh <- nil
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
