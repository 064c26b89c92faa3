package provider

import (
	"context"

	"github.com/kbukum/scribekit/observability"
)

// WithTracing wraps each call in a span named "<service>.<provider>".
func WithTracing[I, O any](service string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, service: service}
	}
}

type tracingRR[I, O any] struct {
	inner   RequestResponse[I, O]
	service string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.service+"."+t.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.service)
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, t.inner.Name())

	out, err := t.inner.Execute(ctx, input)
	observability.SetSpanError(ctx, err)
	return out, err
}
