// Package provider defines the RequestResponse abstraction used for remote
// operations and the middleware that decorates them.
//
//	summarize := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithTracing[In, Out]("scribe"),
//	    provider.WithMetrics[In, Out]("scribe", metrics),
//	)(provider.Func("summarize", call))
//
// ContextStore is the typed key/value contract behind session storage;
// MemoryStore is the in-process implementation and redis.TypedStore the
// shared one.
package provider
