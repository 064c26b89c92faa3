// Package resilience provides opt-in failure handling for outbound calls:
// bounded retry with backoff, a circuit breaker and a token-bucket rate
// limiter. Nothing here is enabled by default; callers that must not repeat
// requests simply leave the configs disabled.
package resilience
