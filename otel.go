package recipebox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	TracerNameCatalog = "recipebox-catalog"
	TracerNameMealDB  = "recipebox-mealdb"
	TracerNameServer  = "recipebox-server"
	TracerNameLambda  = "recipebox-lambda"
)

// OtelConfig is a configuration struct for the OpenTelemetry providers.
type OtelConfig struct {
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=set-me"`
	Headers        string `env:"OTEL_EXPORTER_OTLP_HEADERS,default=set-me"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=recipebox"`
	DeployEnv      string `env:"OTEL_DEPLOY_ENV,default=development"`
}

type otelShutdown func(ctx context.Context) error

// Telemetry bundles the providers handed to instrumented components.
type Telemetry struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Shutdown       otelShutdown
}

// Tracer returns a named tracer from the bundled provider.
func (t Telemetry) Tracer(name string) trace.Tracer { return t.TracerProvider.Tracer(name) }

// Meter returns a named meter from the bundled provider.
func (t Telemetry) Meter(name string) metric.Meter { return t.MeterProvider.Meter(name) }

// NoopTelemetry returns providers that record nothing.
func NoopTelemetry() Telemetry {
	return Telemetry{
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
		Shutdown:       func(context.Context) error { return nil },
	}
}

// InitOtel initializes the OpenTelemetry SDK with OTLP gRPC exporters and registers the
// global providers. entrypoint names the binary (TracerNameServer, TracerNameLambda) and is
// recorded on the resource so the server and lambda can be told apart.
func InitOtel(ctx context.Context, entrypoint string) (Telemetry, error) {
	var cfg OtelConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return Telemetry{}, err
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return Telemetry{}, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return Telemetry{}, err
	}

	res, err := newResource(cfg, entrypoint)
	if err != nil {
		return Telemetry{}, err
	}

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter), sdktrace.WithResource(res))
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	// W3C trace context and baggage so spans join the browser's traces
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		err := errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)

		if err != nil && err.Error() == "gRPC exporter is shutdown" {
			return nil
		}

		return err
	}

	return Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Shutdown:       shutdown,
	}, nil
}

// newResource describes this process: the service from cfg, the entrypoint, the
// instrumented components and a per-process instance id, merged over the SDK defaults.
func newResource(cfg OtelConfig, entrypoint string) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("service.instance.id", uuid.NewString()),
		attribute.String("deployment.environment", cfg.DeployEnv),
		attribute.String("recipebox.entrypoint", entrypoint),
		attribute.StringSlice("recipebox.components", []string{TracerNameCatalog, TracerNameMealDB, entrypoint}),
	))
}
