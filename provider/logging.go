package provider

import (
	"context"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
)

// WithLogging logs every Execute with its duration. Failures are logged at
// warn with the error class; cancellations at debug.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &loggingRR[I, O]{inner: inner, log: log}
	}
}

type loggingRR[I, O any] struct {
	inner RequestResponse[I, O]
	log   *logger.Logger
}

func (l *loggingRR[I, O]) Name() string                         { return l.inner.Name() }
func (l *loggingRR[I, O]) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	out, err := l.inner.Execute(ctx, input)

	log := l.log.WithContext(ctx)
	fields := logger.MergeWithDuration(logger.Fields(logger.FieldOperation, l.inner.Name()), time.Since(start))
	switch class := errors.ClassOf(err); {
	case err == nil:
		log.Debug("provider call succeeded", fields)
	case class == errors.ClassCanceled:
		log.Debug("provider call canceled", fields)
	default:
		fields["class"] = class.String()
		log.Warn("provider call failed", logger.MergeWithError(fields, err))
	}
	return out, err
}
