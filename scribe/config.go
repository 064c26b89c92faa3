package scribe

import (
	"fmt"
	"time"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/config"
	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/session"
	"github.com/kbukum/scribekit/storage"
)

// DefaultAPITimeout bounds a single API request. Uploads of large files and
// synchronous transcriptions can take minutes.
const DefaultAPITimeout = 10 * time.Minute

// Config is the full client configuration.
//
//	name: scribe
//	api:
//	  base_url: https://scribe.example.com/api
//	poll:
//	  interval: 2s
//	  max_wait: 2h
//	session:
//	  store: file
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	API           httpclient.Config    `yaml:"api" mapstructure:"api"`
	Upload        job.UploadConfig     `yaml:"upload" mapstructure:"upload"`
	Poll          job.PollConfig       `yaml:"poll" mapstructure:"poll"`
	Session       session.Config       `yaml:"session" mapstructure:"session"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// DefaultConfig returns a Config with every default applied, including the
// poll ceiling that a zero MaxWait would otherwise disable.
func DefaultConfig() *Config {
	cfg := &Config{
		ServiceConfig: config.ServiceConfig{Name: "scribe"},
		Poll:          job.DefaultPollConfig(),
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribe"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.API.BaseURL == "" {
		c.API.BaseURL = api.DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	c.API.ApplyDefaults()
	c.Upload.ApplyDefaults()
	c.Poll.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []struct {
		section string
		fn      func() error
	}{
		{"api", c.API.Validate},
		{"poll", c.Poll.Validate},
		{"session", c.Session.Validate},
		{"storage", c.Storage.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.section, err)
		}
	}
	return nil
}
