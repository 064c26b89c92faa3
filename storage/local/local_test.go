package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/scribekit/storage"
)

func TestStorage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "in"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "in", "talk.mp3"), []byte("ID3data"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	fi, err := s.Stat(ctx, "in/talk.mp3")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size != 7 || fi.ContentType != "audio/mpeg" {
		t.Errorf("Stat = %+v", fi)
	}

	rc, err := s.Open(ctx, "in/talk.mp3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "ID3data" {
		t.Errorf("content = %q", data)
	}

	if ok, err := s.Exists(ctx, "in/talk.mp3"); !ok || err != nil {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	if ok, err := s.Exists(ctx, "in/none.mp3"); ok || err != nil {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	if _, err := s.Open(ctx, "in/none.mp3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Open(missing) = %v", err)
	}
	if _, err := s.Stat(ctx, "in"); err == nil {
		t.Error("Stat on a directory should fail")
	}
}

func TestStorageStaysInsideBase(t *testing.T) {
	outer := t.TempDir()
	base := filepath.Join(outer, "base")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outer, "secret.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, _ := New(base)
	if _, err := s.Open(context.Background(), "../secret.txt"); err == nil {
		t.Error("expected path outside base to be rejected or not found")
	}
}
