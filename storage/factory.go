package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/scribekit/logger"
)

// Factory builds a Storage from configuration.
type Factory func(ctx context.Context, cfg Config) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a provider available to New. Provider packages
// call it from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the Storage selected by cfg.Provider. The provider package
// must be linked in, e.g. with a blank import of storage/s3.
func New(ctx context.Context, cfg Config) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: provider %q is not registered", cfg.Provider)
	}
	logger.Get("storage").Debug("opening storage", logger.Fields("provider", cfg.Provider))
	return f(ctx, cfg)
}

// ForLocation returns a Storage able to read loc and the path to pass to
// it. An s3 location overrides the configured bucket.
func ForLocation(ctx context.Context, cfg Config, loc Location) (Storage, string, error) {
	switch loc.Scheme {
	case SchemeS3:
		cfg.Provider = ProviderS3
		cfg.S3.Bucket = loc.Bucket
	default:
		cfg.Provider = ProviderLocal
	}
	s, err := New(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	return s, loc.Key, nil
}
