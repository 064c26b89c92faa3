package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/scribekit/encryption"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/redis"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config selects and configures the credential store.
type Config struct {
	Store string `yaml:"store" mapstructure:"store"`
	Key   string `yaml:"key" mapstructure:"key"`
	// Path is the file store location. Defaults to
	// <user config dir>/scribe/session.
	Path string `yaml:"path" mapstructure:"path"`
	// Passphrase, when set, encrypts the file store.
	Passphrase string               `yaml:"passphrase" mapstructure:"passphrase"`
	Algorithm  encryption.Algorithm `yaml:"algorithm" mapstructure:"algorithm"`
	Redis      redis.Config         `yaml:"redis" mapstructure:"redis"`
}

// ApplyDefaults selects the file store under the user config directory.
func (c *Config) ApplyDefaults() {
	if c.Store == "" {
		c.Store = StoreFile
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.Store == StoreFile && c.Path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.Path = filepath.Join(dir, "scribe", "session")
	}
	if c.Algorithm == "" {
		c.Algorithm = encryption.AlgorithmChaCha20
	}
}

// Validate checks the store selection.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("session: redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("session: unknown store %q (want memory, file or redis)", c.Store)
	}
	return nil
}

// NewStore builds the configured store. The returned close function releases
// backend connections and is never nil.
func NewStore(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case StoreMemory:
		return provider.NewMemoryStore[Credential](), noop, nil
	case StoreFile:
		var enc encryption.Encryptor
		if cfg.Passphrase != "" {
			var err error
			enc, err = encryption.New(cfg.Passphrase, encryption.WithAlgorithm(cfg.Algorithm), encryption.WithContext("scribe-session"))
			if err != nil {
				return nil, noop, err
			}
		}
		return NewFileStore(cfg.Path, enc), noop, nil
	case StoreRedis:
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("session: redis store: %w", err)
		}
		return redis.NewTypedStore[Credential](client, client.Config().KeyPrefix+":session"), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("session: unknown store %q", cfg.Store)
	}
}
