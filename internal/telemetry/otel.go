package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds the configuration for OpenTelemetry
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
	MetricInterval time.Duration
}

// DefaultConfig returns a configuration with export disabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "roomieradar",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "http://localhost:4318",
		Enabled:        false,
		MetricInterval: 30 * time.Second,
	}
}

// Provider holds the OpenTelemetry providers
type Provider struct {
	TraceProvider  *trace.TracerProvider
	MetricProvider *metric.MeterProvider
	config         *Config
}

// NewProvider creates the trace and metric providers and installs them globally.
// A disabled config yields a Provider whose Shutdown is a no-op.
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation": "initialize_otel",
		"service":   "telemetry",
		"enabled":   config.Enabled,
	})

	if !config.Enabled {
		logger.Info("OpenTelemetry is disabled")
		return &Provider{config: config}, nil
	}

	res, err := createResource(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceProvider, err := newTraceProvider(ctx, res, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace provider: %w", err)
	}

	metricProvider, err := newMetricProvider(ctx, res, config)
	if err != nil {
		_ = traceProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric provider: %w", err)
	}

	otel.SetTracerProvider(traceProvider)
	otel.SetMeterProvider(metricProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithField("endpoint", config.OTLPEndpoint).Info("OpenTelemetry initialized")

	return &Provider{
		TraceProvider:  traceProvider,
		MetricProvider: metricProvider,
		config:         config,
	}, nil
}

// Shutdown flushes and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.config == nil || !p.config.Enabled {
		return nil
	}

	var errs []error
	if p.TraceProvider != nil {
		if err := p.TraceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown trace provider: %w", err))
		}
	}
	if p.MetricProvider != nil {
		if err := p.MetricProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metric provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

func createResource(ctx context.Context, config *Config) (*resource.Resource, error) {
	instanceID, err := os.Hostname()
	if err != nil || instanceID == "" {
		instanceID = config.ServiceName + "-" + NewCorrelationID()[:8]
	}

	return resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.ServiceInstanceID(instanceID),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
}

func newTraceProvider(ctx context.Context, res *resource.Resource, config *Config) (*trace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.OTLPEndpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	sampler := trace.ParentBased(trace.TraceIDRatioBased(0.2))
	if config.Environment == "development" {
		sampler = trace.AlwaysSample()
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(sampler),
	), nil
}

func newMetricProvider(ctx context.Context, res *resource.Resource, config *Config) (*metric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(config.OTLPEndpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := config.MetricInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(res),
	), nil
}

// InitializeOpenTelemetry initializes OpenTelemetry and returns a shutdown func
// bounded to ten seconds.
func InitializeOpenTelemetry(ctx context.Context, config *Config) (func(), error) {
	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry provider: %w", err)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			GetContextualLogger(shutdownCtx).WithFields(map[string]interface{}{
				"operation": "shutdown_otel",
				"service":   "telemetry",
			}).WithError(err).Error("Error shutting down OpenTelemetry")
		}
	}, nil
}
