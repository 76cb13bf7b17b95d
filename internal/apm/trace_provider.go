// Package apm wires an OpenTelemetry trace provider for the router.
// Exporters are selected at startup; business code only ever talks to
// the otel globals.
package apm

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/dex-router/internal/logger"
)

// Provider selects the span exporter backend.
type Provider string

const (
	ZipkinProvider  Provider = "ZIPKIN_PROVIDER"
	OTLPProvider    Provider = "OTLP_PROVIDER"
	ConsoleProvider Provider = "CONSOLE_PROVIDER"
	EmptyProvider   Provider = "EMPTY_PROVIDER"
)

// TraceProvider is the startup handle; Stop flushes pending spans.
type TraceProvider interface {
	Stop() error
}

type noopProvider struct{}

func (noopProvider) Stop() error { return nil }

// NewEmptyTraceProvider returns a provider that exports nothing.
func NewEmptyTraceProvider() TraceProvider { return noopProvider{} }

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

func (p *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

type tracerOptions struct {
	exporter sdktrace.SpanExporter
	provider Provider
}

// TracerOption configures NewTraceProvider.
type TracerOption func(*tracerOptions)

// WithProvider picks the exporter backend. Endpoints come from the
// standard OTEL_EXPORTER_OTLP_ENDPOINT environment variable.
func WithProvider(provider Provider, log logger.LoggerInterface) TracerOption {
	return func(o *tracerOptions) {
		o.provider = provider

		endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

		var err error
		switch provider {
		case ZipkinProvider:
			o.exporter, err = zipkin.New(endpoint)
		case OTLPProvider:
			if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "http/protobuf" {
				o.exporter, err = otlptracehttp.New(context.Background(),
					otlptracehttp.WithEndpointURL(endpoint))
			} else {
				o.exporter, err = otlptracegrpc.New(context.Background(),
					otlptracegrpc.WithEndpointURL(endpoint))
			}
		case ConsoleProvider:
			o.exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		default:
			o.provider = EmptyProvider
		}

		if err != nil {
			log.Error(context.Background(), "trace exporter init failed, tracing disabled",
				"provider", string(provider),
				"error", err)
			o.provider = EmptyProvider
			o.exporter = nil
		}
	}
}

// NewTraceProvider installs the global OTEL tracer provider and
// propagators. Service name comes from OTEL_SERVICE_NAME.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	opts := &tracerOptions{provider: EmptyProvider}
	for _, opt := range options {
		opt(opts)
	}

	if opts.provider == EmptyProvider || opts.exporter == nil {
		return NewEmptyTraceProvider()
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(os.Getenv("OTEL_SERVICE_NAME")),
			attribute.String("otel.provider", string(opts.provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}
}
