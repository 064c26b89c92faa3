package storage

import (
	"errors"
	"fmt"
)

const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// DefaultRegion is used for S3 when none is configured.
const DefaultRegion = "us-east-1"

// Config selects and configures the input file source.
type Config struct {
	Provider string      `mapstructure:"provider"`
	Local    LocalConfig `mapstructure:"local"`
	S3       S3Config    `mapstructure:"s3"`
}

// LocalConfig configures the filesystem source. An empty BasePath
// resolves paths against the working directory.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// S3Config configures an S3 or S3-compatible source.
type S3Config struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks the selected provider's settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		return nil
	case ProviderS3:
		var errs []error
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, errors.New("s3.access_key and s3.secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: %w", errors.Join(errs...))
		}
		return nil
	default:
		return fmt.Errorf("storage: unknown provider %q", c.Provider)
	}
}
