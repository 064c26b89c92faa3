// Package observability wires OpenTelemetry tracing and metrics for the
// transcription client.
//
//	tel, err := observability.Setup(ctx, cfg.Observability)
//	defer tel.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPoll)
//	defer span.End()
//	tel.Metrics.RecordPoll(ctx, "processing")
package observability
