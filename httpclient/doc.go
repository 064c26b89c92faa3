// Package httpclient is the HTTP transport used to reach the transcription
// API. An Adapter adds to net/http:
//
//   - base URL resolution and default headers
//   - per-request authentication, including tokens read at send time
//   - streamed multipart uploads with progress reporting
//   - error classification (*Error) for transport and status failures
//   - opt-in retry, circuit breaking and rate limiting
//   - optional HTTP/2 and custom TLS
//   - request ids and trace context propagation
//
// Typed helpers decode JSON responses:
//
//	user, err := httpclient.Get[User](ctx, adapter, "auth/me")
package httpclient
