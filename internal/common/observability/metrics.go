package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "cars-api"

// Observability records store-level metrics and hands out the tracer used around store calls.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider trace.TracerProvider
	shutdownTracer func(context.Context) error
	storeQueries   otelmetric.Int64Counter
	storeDuration  otelmetric.Float64Histogram
}

// New wires an OpenTelemetry meter exported through registerer (nil means the
// Prometheus default registry) and, when jaegerEndpoint is set, a span exporter.
// Failures degrade to no-op instruments; callers never need to nil-check.
func New(serviceName, jaegerEndpoint string, registerer promclient.Registerer) (*Observability, error) {
	o := &Observability{}

	tp, shutdown, err := NewTracerProvider(serviceName, jaegerEndpoint)
	if err != nil {
		return o, err
	}
	o.tracerProvider = tp
	o.shutdownTracer = shutdown

	opts := []prometheus.Option{}
	if registerer != nil {
		opts = append(opts, prometheus.WithRegisterer(registerer))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	o.meterProvider = provider

	meter := provider.Meter(serviceName)

	o.storeQueries, _ = meter.Int64Counter(
		"store.queries",
		otelmetric.WithDescription("Number of backing store calls"),
	)
	o.storeDuration, _ = meter.Float64Histogram(
		"store.query.duration",
		otelmetric.WithDescription("Backing store call duration"),
		otelmetric.WithUnit("ms"),
	)

	return o, nil
}

// Tracer returns the service tracer, falling back to the global provider.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracerProvider == nil {
		return otel.Tracer(instrumentationName)
	}
	return o.tracerProvider.Tracer(instrumentationName)
}

func (o *Observability) RecordStoreQuery(ctx context.Context, store, operation, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("store", store),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.storeQueries != nil {
		o.storeQueries.Add(ctx, 1, attrs)
	}
	if o.storeDuration != nil {
		o.storeDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.shutdownTracer != nil {
		_ = o.shutdownTracer(ctx)
	}
}
