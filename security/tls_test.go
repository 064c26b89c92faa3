package security

import (
	"crypto/tls"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuild_Disabled(t *testing.T) {
	var nilCfg *TLSConfig
	if got, err := nilCfg.Build(); got != nil || err != nil {
		t.Fatalf("nil config: %v, %v", got, err)
	}
	if got, err := (&TLSConfig{}).Build(); got != nil || err != nil {
		t.Fatalf("zero config: %v, %v", got, err)
	}
}

func TestBuild_Versions(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"1.2", tls.VersionTLS12, false},
		{"1.3", tls.VersionTLS13, false},
		{"1.0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg, err := (&TLSConfig{MinVersion: tt.in}).Build()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.MinVersion != tt.want {
				t.Errorf("MinVersion = %x, want %x", cfg.MinVersion, tt.want)
			}
		})
	}
}

func TestValidate_CertKeyPair(t *testing.T) {
	err := (&TLSConfig{CertFile: "cert.pem"}).Validate()
	if err == nil || !strings.Contains(err.Error(), "together") {
		t.Fatalf("expected pair error, got %v", err)
	}
}

func TestBuild_CAFileTrustsServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}
	if err := os.WriteFile(caPath, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}

	tlsCfg, err := (&TLSConfig{CAFile: caPath}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request with custom CA failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestBuild_BadCAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("not a cert"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := (&TLSConfig{CAFile: path}).Build(); err == nil {
		t.Fatal("expected error for invalid PEM")
	}
	if _, err := (&TLSConfig{CAFile: path + ".missing"}).Build(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
