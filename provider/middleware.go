package provider

// Middleware wraps a RequestResponse with cross-cutting behavior.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares; the first one is outermost, so
// Chain(a, b, c)(p) is a(b(c(p))). Nil entries are skipped.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				inner = middlewares[i](inner)
			}
		}
		return inner
	}
}
