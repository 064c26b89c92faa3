package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scribekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter installs a periodic OTLP/HTTP meter provider as the global
// provider. The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the client. All methods are
// safe on a nil receiver.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
	submissionTotal   metric.Int64Counter
	pollTotal         metric.Int64Counter
	jobsActive        metric.Int64UpDownCounter
	jobDuration       metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.operationTotal, err = meter.Int64Counter("scribe.operation.total",
		metric.WithDescription("Remote operations by name and status")); err != nil {
		return nil, fmt.Errorf("creating scribe.operation.total: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("scribe.operation.duration",
		metric.WithDescription("Remote operation latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating scribe.operation.duration: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("scribe.error.total",
		metric.WithDescription("Errors by class and component")); err != nil {
		return nil, fmt.Errorf("creating scribe.error.total: %w", err)
	}
	if m.submissionTotal, err = meter.Int64Counter("scribe.submission.total",
		metric.WithDescription("Transcription submissions by response status")); err != nil {
		return nil, fmt.Errorf("creating scribe.submission.total: %w", err)
	}
	if m.pollTotal, err = meter.Int64Counter("scribe.poll.total",
		metric.WithDescription("Status polls by observed status")); err != nil {
		return nil, fmt.Errorf("creating scribe.poll.total: %w", err)
	}
	if m.jobsActive, err = meter.Int64UpDownCounter("scribe.job.active",
		metric.WithDescription("Jobs currently being polled")); err != nil {
		return nil, fmt.Errorf("creating scribe.job.active: %w", err)
	}
	if m.jobDuration, err = meter.Float64Histogram("scribe.job.duration",
		metric.WithDescription("Time from first poll to terminal state"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating scribe.job.duration: %w", err)
	}
	return &m, nil
}

// RecordOperation records one remote operation.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError counts an error by class and component.
func (m *Metrics) RecordError(ctx context.Context, class, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("class", class),
		attribute.String("component", component),
	))
}

// RecordSubmission counts a submission by the status the service returned.
func (m *Metrics) RecordSubmission(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.submissionTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordPoll counts a status poll by the observed status.
func (m *Metrics) RecordPoll(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.pollTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// JobStarted increments the active job gauge.
func (m *Metrics) JobStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobsActive.Add(ctx, 1)
}

// JobFinished decrements the active job gauge and records the job duration.
func (m *Metrics) JobFinished(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobsActive.Add(ctx, -1)
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}
