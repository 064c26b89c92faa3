package job

import (
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
)

type options struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Submitter, Poller or Tracker.
type Option func(*options)

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records submissions, polls and job durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(component string, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get(component)
	}
	return o
}
