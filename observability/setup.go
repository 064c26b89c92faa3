package observability

import (
	"context"
	"errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry owns the providers created by Setup.
type Telemetry struct {
	Metrics *Metrics

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Setup initializes tracing and metrics according to cfg. With
// observability disabled it returns instruments bound to the global
// (no-op) meter.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{}
	if cfg.Enabled {
		tp, err := InitTracer(ctx, cfg.TracerConfig())
		if err != nil {
			return nil, err
		}
		t.tp = tp
		mp, err := InitMeter(ctx, cfg.MeterConfig())
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		t.mp = mp
	} else {
		InstallPropagator()
	}

	m, err := NewMetrics(Meter(instrumentationName))
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	t.Metrics = m
	return t, nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
