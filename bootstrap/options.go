package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/scribekit/logger"
)

// Option configures NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summary         io.Writer
	quiet           bool
}

// WithLogger uses l instead of initializing the global logger from config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithSummaryOutput writes the startup summary to w instead of stderr.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summary = w }
}

// WithQuiet disables the startup summary, for CLI tasks whose stdout and
// stderr belong to the command.
func WithQuiet() Option {
	return func(o *appOptions) { o.quiet = true }
}
