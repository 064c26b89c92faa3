package provider

import (
	"context"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/observability"
)

// WithMetrics records an operation count and latency per call, plus an
// error count keyed by error class on failure.
func WithMetrics[I, O any](service string, metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, service: service, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	service string
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	out, err := m.inner.Execute(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, errors.ClassOf(err).String(), m.inner.Name())
	}
	m.metrics.RecordOperation(ctx, m.service, m.inner.Name(), status, time.Since(start))
	return out, err
}
