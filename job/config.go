package job

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxUploadSize is the largest file accepted for upload.
	DefaultMaxUploadSize int64 = 100 << 20
	DefaultInterval            = 2 * time.Second
	DefaultMaxWait             = 2 * time.Hour
	DefaultProgressAfter       = 3 * time.Second
)

// UploadConfig bounds submissions.
type UploadConfig struct {
	MaxSize int64 `yaml:"max_size" mapstructure:"max_size"`
}

// ApplyDefaults sets the 100 MiB ceiling when none is configured.
func (c *UploadConfig) ApplyDefaults() {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxUploadSize
	}
}

// PollConfig controls the status poller.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// MaxWait bounds the whole poll. Zero polls until a terminal status.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	// ProgressAfter is the elapsed time after which progress reports at
	// least PhaseQueued.
	ProgressAfter time.Duration `yaml:"progress_after" mapstructure:"progress_after"`
}

// DefaultPollConfig returns the 2s cadence with a 2h ceiling.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: DefaultInterval, MaxWait: DefaultMaxWait, ProgressAfter: DefaultProgressAfter}
}

// ApplyDefaults fills zero durations. MaxWait is left alone so an explicit
// zero keeps meaning "no ceiling".
func (c *PollConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.ProgressAfter <= 0 {
		c.ProgressAfter = DefaultProgressAfter
	}
	if c.MaxWait < 0 {
		c.MaxWait = 0
	}
}

// Validate checks that the ceiling, when set, allows at least one poll.
func (c *PollConfig) Validate() error {
	if c.MaxWait > 0 && c.MaxWait < c.Interval {
		return fmt.Errorf("job: poll.max_wait %s is shorter than poll.interval %s", c.MaxWait, c.Interval)
	}
	return nil
}
