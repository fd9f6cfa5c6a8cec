package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// Config holds OpenTelemetry provider configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string  // "development" or "production"
	Exporter       string  // "stdout", "otlp" or "none"
	Insecure       bool    // plain HTTP for OTLP
	SampleRatio    float64 // fraction of root spans kept, 0 < r <= 1
}

// ConfigFromEnv builds Config from OTEL_* environment variables.
// An unparsable OTEL_TRACES_SAMPLER_RATIO falls back to sampling everything.
func ConfigFromEnv() Config {
	env := envOrDefault("OTEL_ENVIRONMENT", "development")
	ratio, err := strconv.ParseFloat(envOrDefault("OTEL_TRACES_SAMPLER_RATIO", "1"), 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	return Config{
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", "sendstack"),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "0.1.0"),
		Environment:    env,
		Exporter:       envOrDefault("OTEL_EXPORTER", ExporterStdout),
		Insecure:       env == "development",
		SampleRatio:    ratio,
	}
}

// Providers holds the installed providers' shutdown hook.
type Providers struct {
	Shutdown func(ctx context.Context) error
}

// Setup installs global tracer and meter providers plus W3C propagation.
// Shutdown flushes pending telemetry and must run on exit.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	spans, err := newSpanExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}
	readers, err := newMetricReaders(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	tpOpts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(sampleRatio(cfg)))),
	}
	if spans != nil {
		tpOpts = append(tpOpts, trace.WithBatcher(spans))
	}
	tp := trace.NewTracerProvider(tpOpts...)

	mpOpts := []metric.Option{metric.WithResource(res)}
	for _, r := range readers {
		mpOpts = append(mpOpts, metric.WithReader(r))
	}
	mp := metric.NewMeterProvider(mpOpts...)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Providers{Shutdown: func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		return errors.Join(errs...)
	}}, nil
}

// newSpanExporter returns nil for ExporterNone: spans are still created for
// in-process propagation but never leave the process.
func newSpanExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		var opts []otlptracehttp.Option
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterNone:
		return nil, nil
	default:
		return nil, unsupportedExporter(cfg.Exporter)
	}
}

func newMetricReaders(ctx context.Context, cfg Config) ([]metric.Reader, error) {
	var exporter metric.Exporter
	var err error

	switch cfg.Exporter {
	case ExporterOTLP:
		var opts []otlpmetrichttp.Option
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	case ExporterStdout:
		exporter, err = stdoutmetric.New()
	case ExporterNone:
		return nil, nil
	default:
		return nil, unsupportedExporter(cfg.Exporter)
	}
	if err != nil {
		return nil, err
	}
	return []metric.Reader{metric.NewPeriodicReader(exporter)}, nil
}

func unsupportedExporter(name string) error {
	return fmt.Errorf("unsupported exporter %q (use %q, %q or %q)",
		name, ExporterStdout, ExporterOTLP, ExporterNone)
}

func sampleRatio(cfg Config) float64 {
	if cfg.SampleRatio <= 0 || cfg.SampleRatio > 1 {
		return 1
	}
	return cfg.SampleRatio
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
