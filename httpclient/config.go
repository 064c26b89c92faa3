package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/scribekit/resilience"
	"github.com/kbukum/scribekit/security"
)

const (
	defaultTimeout          = 60 * time.Second
	defaultMaxResponseBytes = 32 << 20
)

// Config configures an Adapter.
type Config struct {
	// Name identifies the adapter in logs and health reports.
	Name    string `yaml:"name" mapstructure:"name"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds a whole request including the body upload. Zero disables
	// the client timeout and leaves cancellation to the context.
	Timeout time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// HTTP2 forces an HTTP/2 capable transport even with custom TLS settings.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes"`

	TLS            *security.TLSConfig             `yaml:"tls" mapstructure:"tls"`
	Retry          resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	RateLimit      resilience.RateLimiterConfig    `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	} else if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
	if c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("httpclient: base_url %q must be an absolute http(s) URL", c.BaseURL)
		}
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	if c.Retry.Enabled && c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("httpclient: retry.max_attempts must not be negative")
	}
	return nil
}
