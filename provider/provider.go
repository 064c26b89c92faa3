package provider

import "context"

// Provider is the base interface of every backend.
type Provider interface {
	Name() string
	// IsAvailable reports whether the provider can take requests.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider that maps one input to one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Func adapts a plain function to RequestResponse. It is always available.
func Func[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return &funcRR[I, O]{name: name, fn: fn}
}

type funcRR[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

func (f *funcRR[I, O]) Name() string                     { return f.name }
func (f *funcRR[I, O]) IsAvailable(context.Context) bool { return true }
func (f *funcRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}

// WithAvailability overrides IsAvailable with check.
func WithAvailability[I, O any](inner RequestResponse[I, O], check func(ctx context.Context) bool) RequestResponse[I, O] {
	return &availabilityRR[I, O]{RequestResponse: inner, check: check}
}

type availabilityRR[I, O any] struct {
	RequestResponse[I, O]
	check func(ctx context.Context) bool
}

func (a *availabilityRR[I, O]) IsAvailable(ctx context.Context) bool { return a.check(ctx) }
