package version

import (
	"runtime"
	"strings"
	"testing"
)

func withVersion(t *testing.T, v, commit string) {
	t.Helper()
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = v, commit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })
}

func TestGet(t *testing.T) {
	withVersion(t, "1.4.0", "0123456789abcdef")
	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("version = %q", info.Version)
	}
	if info.GitCommit != "0123456" {
		t.Errorf("commit should be shortened, got %q", info.GitCommit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("go version = %q", info.GoVersion)
	}
}

func TestInfoShortAndRelease(t *testing.T) {
	tests := []struct {
		info    Info
		short   string
		release bool
	}{
		{Info{Version: "dev"}, "dev", false},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234", true},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty", false},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.short {
			t.Errorf("Short() = %q, want %q", got, tt.short)
		}
		if got := tt.info.IsRelease(); got != tt.release {
			t.Errorf("IsRelease(%+v) = %v", tt.info, got)
		}
	}
}

func TestUserAgent(t *testing.T) {
	withVersion(t, "2.0.0", "")
	ua := UserAgent("scribekit")
	if !strings.HasPrefix(ua, "scribekit/2.0.0 (") {
		t.Errorf("user agent = %q", ua)
	}
	if !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("user agent lacks platform: %q", ua)
	}
}
