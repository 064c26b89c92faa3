package scribetest

import (
	"net/http/httptest"
	"testing"
)

// Start serves a new fake on a loopback port for the duration of t and
// returns it with the API base URL (".../api").
func Start(t testing.TB, opts ...Option) (*Server, string) {
	t.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL + "/api"
}
