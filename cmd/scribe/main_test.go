package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/scribekit/scribetest"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// setup isolates config and credential files and returns the fake and a
// runner bound to it.
func setup(t *testing.T, opts ...scribetest.Option) (*scribetest.Server, func(stdin string, args ...string) result) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("SCRIBE_SESSION_PATH", filepath.Join(dir, "session"))
	t.Setenv("SCRIBE_POLL_INTERVAL", "10ms")
	t.Setenv("SCRIBE_LOGGING_LEVEL", "error")
	t.Setenv(passwordEnv, "")

	srv, base := scribetest.Start(t, opts...)
	return srv, func(stdin string, args ...string) result {
		t.Helper()
		var out, errOut bytes.Buffer
		full := append([]string{"-api", base}, args...)
		code := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
		return result{code: code, stdout: out.String(), stderr: errOut.String()}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestVersion(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"version"}, strings.NewReader(""), &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Errorf("version output = %q", out.String())
	}
}

func TestUsageErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(context.Background(), nil, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Errorf("no command: exit %d, want 2", code)
	}
	errOut.Reset()
	if code := run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Errorf("unknown command: exit %d, want 2", code)
	}
	if !strings.Contains(errOut.String(), `unknown command "frobnicate"`) {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestTranscribe(t *testing.T) {
	srv, run := setup(t)
	audio := writeFile(t, "talk.mp3", "ID3 audio bytes")

	res := run("", "transcribe", "-q", audio)
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if got := strings.TrimSpace(res.stdout); got != "Transcript of talk.mp3" {
		t.Errorf("stdout = %q", got)
	}
	if srv.Count(scribetest.EndpointStatus) == 0 {
		t.Error("queued job was never polled")
	}
}

func TestTranscribeValidation(t *testing.T) {
	srv, run := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"transcribe"}},
		{"bad language", []string{"transcribe", "-lang", "fr", "x.mp3"}},
		{"bad type", []string{"transcribe", "-type", "podcast", "x.mp3"}},
		{"bad summary", []string{"transcribe", "-summary", "medium", "x.mp3"}},
		{"bad flag", []string{"transcribe", "-nope", "x.mp3"}},
		{"bad task id", []string{"status", "../etc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := run("", tt.args...); res.code != 2 {
				t.Errorf("exit %d, want 2 (stderr %q)", res.code, res.stderr)
			}
		})
	}
	if n := srv.Count(scribetest.EndpointTranscribe); n != 0 {
		t.Errorf("transcribe requests = %d, want 0", n)
	}
}

func TestTranscribeOversize(t *testing.T) {
	srv, run := setup(t)
	t.Setenv("SCRIBE_UPLOAD_MAX_SIZE", "4")
	audio := writeFile(t, "big.mp3", "more than four bytes")

	res := run("", "transcribe", "-q", audio)
	if res.code != 1 {
		t.Fatalf("exit %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "File size exceeds") {
		t.Errorf("stderr = %q", res.stderr)
	}
	if n := srv.Count(scribetest.EndpointTranscribe); n != 0 {
		t.Errorf("transcribe requests = %d, want 0", n)
	}
}

func TestJobError(t *testing.T) {
	srv, run := setup(t)
	srv.AddTask("task-1", "a.mp3", scribetest.Failed("decoder crashed"))

	res := run("", "result", "task-1")
	if res.code != 1 {
		t.Fatalf("exit %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "decoder crashed") {
		t.Errorf("stderr = %q", res.stderr)
	}
	res = run("", "status", "task-1")
	if res.code != 0 || !strings.Contains(res.stdout, "error: decoder crashed") {
		t.Fatalf("status = %d %q %q", res.code, res.stdout, res.stderr)
	}
}

func TestSummarizeFromStdin(t *testing.T) {
	_, run := setup(t)

	res := run("grace and peace", "summarize", "-kind", "detailed", "-")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if got := strings.TrimSpace(res.stdout); got != "Detailed summary: grace and peace" {
		t.Errorf("stdout = %q", got)
	}

	if res := run("   ", "summarize", "-"); res.code != 2 {
		t.Errorf("empty input: exit %d, want 2", res.code)
	}
}

func TestAccountLifecycle(t *testing.T) {
	_, run := setup(t)
	notes := writeFile(t, "notes.txt", "the sermon text")

	if res := run("", "records"); res.code != 1 {
		t.Fatalf("records before login: exit %d, want 1", res.code)
	}

	res := run("", "signup", "-email", "kim@example.com", "-password", "correct-horse", "-name", "Kim")
	if res.code != 0 {
		t.Fatalf("signup exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "logged in as kim@example.com") {
		t.Errorf("signup stdout = %q", res.stdout)
	}

	res = run("", "whoami")
	if res.code != 0 || strings.TrimSpace(res.stdout) != "Kim <kim@example.com>" {
		t.Fatalf("whoami = %d %q %q", res.code, res.stdout, res.stderr)
	}

	res = run("", "draft", "-category", "sermon", notes)
	if res.code != 0 {
		t.Fatalf("draft exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "the sermon text") {
		t.Errorf("draft stdout = %q", res.stdout)
	}

	res = run("", "save", "-category", "sermon", "-title", "Sunday", notes)
	if res.code != 0 {
		t.Fatalf("save exit %d: %s", res.code, res.stderr)
	}

	res = run("", "-json", "records")
	if res.code != 0 || !strings.Contains(res.stdout, `"title": "Sunday"`) {
		t.Fatalf("records = %d %q %q", res.code, res.stdout, res.stderr)
	}

	if res := run("", "logout"); res.code != 0 {
		t.Fatalf("logout exit %d: %s", res.code, res.stderr)
	}
	if res := run("", "whoami"); res.code != 1 {
		t.Errorf("whoami after logout: exit %d, want 1", res.code)
	}
}

func TestLoginRejected(t *testing.T) {
	_, run := setup(t, scribetest.WithUser("kim@example.com", "correct-horse", "Kim"))

	res := run("", "login", "-email", "kim@example.com", "-password", "wrong-horse")
	if res.code != 1 {
		t.Fatalf("exit %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "Invalid email or password") {
		t.Errorf("stderr = %q", res.stderr)
	}

	t.Setenv(passwordEnv, "correct-horse")
	if res := run("", "login", "-email", "kim@example.com"); res.code != 0 {
		t.Errorf("login with env password: exit %d: %s", res.code, res.stderr)
	}
}

func TestHealthAndOAuth(t *testing.T) {
	_, run := setup(t)

	res := run("", "health")
	if res.code != 0 || !strings.Contains(res.stdout, "healthy") {
		t.Fatalf("health = %d %q %q", res.code, res.stdout, res.stderr)
	}
	res = run("", "oauth-url", "-provider", "google")
	if res.code != 0 || !strings.HasPrefix(res.stdout, "http") {
		t.Fatalf("oauth-url = %d %q %q", res.code, res.stdout, res.stderr)
	}
	if res := run("", "oauth-url"); res.code != 2 {
		t.Errorf("missing provider: exit %d, want 2", res.code)
	}
}
