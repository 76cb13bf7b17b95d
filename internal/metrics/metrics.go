// Package metrics installs the global OTEL meter provider and serves
// the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider is the startup handle for the installed meter provider.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// NewMetricProvider builds a meter provider from the configured
// backends and installs it as the OTEL global. Instruments created
// anywhere in the router report through it.
func NewMetricProvider(options ...OptionFn) MetricProvider {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	var opts []sdkmetric.Option
	for _, reader := range buildReaders(ctx, cfg) {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName)),
	))

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	return mp
}

func buildReaders(ctx context.Context, cfg Config) []sdkmetric.Reader {
	var readers []sdkmetric.Reader

	for _, p := range cfg.Provider {
		switch p.Provider {
		case PrometheusProvider:
			exp, err := promexporter.New()
			if err != nil {
				panic(err)
			}
			readers = append(readers, exp)

		case OtelCollector:
			grpcOpts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(p.Endpoint),
				otlpmetricgrpc.WithHeaders(p.Headers),
			}
			if p.Insecure {
				grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, grpcOpts...)
			if err != nil {
				panic(err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers
}

// ServePrometheusMetrics blocks serving /metrics for Prometheus to
// scrape. Run it on its own goroutine.
func ServePrometheusMetrics(opt ...PromOptionFn) {
	var cfg PromServerConfig
	for _, o := range opt {
		cfg = o(cfg)
	}

	port := cfg.port
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
	}
}
