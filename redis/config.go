package redis

import (
	"fmt"
	"time"
)

// Config is the connection configuration for the session backend.
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "scribe"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis: addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("redis: db must be >= 0, got %d", c.DB)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("redis: pool_size must be > 0")
	}
	return nil
}
