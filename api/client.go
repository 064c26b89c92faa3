package api

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/version"
)

// DefaultBaseURL is where the transcription service listens in development.
const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is a typed client for the transcription service API.
type Client struct {
	http *httpclient.Adapter
	log  *logger.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used by the client and its transport.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client. An empty BaseURL defaults to DefaultBaseURL.
func New(cfg httpclient.Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "scribe-api"
	}
	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = version.UserAgent("scribe")
	}
	cfg.Headers = headers

	c := &Client{log: logger.Get("api")}
	for _, opt := range opts {
		opt(c)
	}

	adapter, err := httpclient.New(cfg,
		httpclient.WithAuth(httpclient.TokenAuth(c.token)),
		httpclient.WithLogger(c.log.WithComponent("http")),
	)
	if err != nil {
		return nil, err
	}
	c.http = adapter
	return c, nil
}

// SetTokenSource replaces the token source used by later requests.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// Name implements provider.Provider.
func (c *Client) Name() string { return c.http.Name() }

// IsAvailable reports whether the transport accepts requests.
func (c *Client) IsAvailable(ctx context.Context) bool { return c.http.IsAvailable(ctx) }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.http.BaseURL() }

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error { return c.http.Close(ctx) }

// rootURL strips a trailing "/api" segment from the base URL. The health
// endpoint lives at the service root.
func (c *Client) rootURL() string {
	base := strings.TrimRight(c.http.BaseURL(), "/")
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = strings.TrimSuffix(u.Path, "/api")
	return strings.TrimRight(u.String(), "/")
}

func taskPath(prefix, taskID string) string {
	return prefix + "/" + url.PathEscape(taskID)
}
