package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/scribekit/encryption"
	"github.com/kbukum/scribekit/provider"
)

// FileStore keeps credentials in a single file readable only by the owner.
// With an Encryptor the file content is sealed.
type FileStore struct {
	path string
	enc  encryption.Encryptor
	now  func() time.Time
	mu   sync.Mutex
}

type fileEntry struct {
	Value     Credential `json:"value"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// NewFileStore returns a store at path. enc may be nil for plain JSON.
func NewFileStore(path string, enc encryption.Encryptor) *FileStore {
	return &FileStore{path: path, enc: enc, now: time.Now}
}

// Path returns the file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(_ context.Context, key string) (*Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	e, ok := entries[key]
	if !ok {
		return nil, nil
	}
	if !e.ExpiresAt.IsZero() && !f.now().Before(e.ExpiresAt) {
		return nil, nil
	}
	v := e.Value
	return &v, nil
}

func (f *FileStore) Save(_ context.Context, key string, val *Credential, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read()
	if err != nil {
		return err
	}
	if val == nil {
		delete(entries, key)
		return f.write(entries)
	}
	e := fileEntry{Value: *val}
	if ttl > 0 {
		e.ExpiresAt = f.now().Add(ttl)
	}
	entries[key] = e
	return f.write(entries)
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	return f.Save(ctx, key, nil, 0)
}

func (f *FileStore) read() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]fileEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", f.path, err)
	}
	if f.enc != nil {
		if data, err = f.enc.Open(data); err != nil {
			return nil, fmt.Errorf("session: decrypt %s: %w", f.path, err)
		}
	}
	entries := map[string]fileEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", f.path, err)
	}
	return entries, nil
}

func (f *FileStore) write(entries map[string]fileEntry) error {
	if len(entries) == 0 {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("session: remove %s: %w", f.path, err)
		}
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if f.enc != nil {
		if data, err = f.enc.Seal(data); err != nil {
			return fmt.Errorf("session: encrypt: %w", err)
		}
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: write %s: %w", f.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("session: replace %s: %w", f.path, err)
	}
	return nil
}

var _ provider.ContextStore[Credential] = (*FileStore)(nil)
