// Package local reads input files from the filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/scribekit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ context.Context, cfg storage.Config) (storage.Storage, error) {
		return New(cfg.Local.BasePath)
	})
}

// Storage reads files under a base directory. With no base directory,
// paths are used as given.
type Storage struct {
	base string
}

var _ storage.Storage = (*Storage)(nil)

// New creates a Storage rooted at base.
func New(base string) (*Storage, error) {
	if base == "" {
		return &Storage{}, nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	return &Storage{base: abs}, nil
}

func (s *Storage) resolve(p string) (string, error) {
	if s.base == "" {
		return filepath.Clean(p), nil
	}
	full := filepath.Join(s.base, filepath.Clean("/"+p))
	if full != s.base && !strings.HasPrefix(full, s.base+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: path %q escapes base directory", p)
	}
	return full, nil
}

func (s *Storage) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, wrap(p, err)
	}
	return f, nil
}

func (s *Storage) Stat(_ context.Context, p string) (storage.FileInfo, error) {
	full, err := s.resolve(p)
	if err != nil {
		return storage.FileInfo{}, err
	}
	fi, err := os.Stat(full)
	if err != nil {
		return storage.FileInfo{}, wrap(p, err)
	}
	if fi.IsDir() {
		return storage.FileInfo{}, fmt.Errorf("storage: %s is a directory", p)
	}
	return storage.FileInfo{
		Path:         p,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
		ContentType:  mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
	}, nil
}

func (s *Storage) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.Stat(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func wrap(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, p)
	}
	return fmt.Errorf("storage: %s: %w", p, err)
}
