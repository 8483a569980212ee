// Package obs provides request metrics with Prometheus export.
//
// Overview:
//   - Responsibility: Bootstrap an OpenTelemetry meter provider with a
//     Prometheus exporter and expose HTTP request metrics
//   - Key Types: Options, Provider, Middleware for request accounting
//   - Concurrency Model: Provider and middleware are safe for concurrent use
//   - Error Semantics: NewProvider returns errors for initialization failures
//   - Performance Notes: Metrics are collected on demand when scraped
//
// Usage:
//
//	provider, err := obs.NewProvider(ctx, obs.Options{AppName: "blog"})
//	mux.Handle("/metrics", provider.PrometheusHandler())
//	handler = obs.Middleware(provider)(handler)
package obs

import (
	"context"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/shaverlee/gearbox/core/errors"
)

// Options configures the metrics provider.
type Options struct {
	AppName    string // Application name attached to every metric
	AppVersion string // Application version
}

// Provider owns the meter provider and the Prometheus registry backing it.
type Provider struct {
	meterProvider *metric.MeterProvider
	registry      *promclient.Registry
}

// NewProvider creates a metrics provider with Prometheus export.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	if opts.AppName == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "application name is required")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.AppName),
			semconv.ServiceVersion(opts.AppVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeFailedSetup, "obs.resource", err)
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutUnits(),
		prometheus.WithoutScopeInfo(),
		prometheus.WithoutCounterSuffixes(),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeFailedSetup, "obs.exporter", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(exporter),
	)

	return &Provider{meterProvider: mp, registry: registry}, nil
}

// Meter returns a named meter for custom instruments.
func (p *Provider) Meter(name string) api.Meter {
	return p.meterProvider.Meter(name)
}

// PrometheusHandler serves the provider's metrics in Prometheus text format.
func (p *Provider) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.meterProvider.Shutdown(shutdownCtx)
}

// Middleware returns an HTTP middleware recording request count and duration
// per method and status class.
func Middleware(p *Provider) func(http.Handler) http.Handler {
	meter := p.Meter("gearbox/http")
	requests, _ := meter.Int64Counter("http.server.requests")
	duration, _ := meter.Float64Histogram("http.server.duration",
		api.WithUnit("ms"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			attrs := api.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.status", strconv.Itoa(recorder.status)),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start).Milliseconds()), attrs)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
