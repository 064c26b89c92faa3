package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http2"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/resilience"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Adapter sends requests with the configured auth, TLS and resilience.
type Adapter struct {
	client *http.Client
	config Config
	auth   *AuthConfig
	log    *logger.Logger
	cb     *resilience.CircuitBreaker
	rl     *resilience.RateLimiter
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithAuth sets the default auth for every request.
func WithAuth(auth *AuthConfig) Option {
	return func(a *Adapter) { a.auth = auth }
}

// WithHTTPClient replaces the underlying client. Its transport is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates an Adapter.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		client: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config: cfg,
		log:    logger.Get("httpclient").WithFields(logger.Fields("adapter", cfg.Name)),
	}
	if cfg.CircuitBreaker.Enabled {
		cbCfg := cfg.CircuitBreaker
		cbCfg.IsFailure = countsAgainstCircuit
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			a.log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
		}
		a.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimit.Enabled {
		a.rl = resilience.NewRateLimiter(cfg.RateLimit)
	}

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func newTransport(cfg Config) (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		t.TLSClientConfig = tlsCfg
	}
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
	}
	return t, nil
}

// Name returns the configured adapter name.
func (a *Adapter) Name() string { return a.config.Name }

// BaseURL returns the configured base URL.
func (a *Adapter) BaseURL() string { return a.config.BaseURL }

// IsAvailable reports false while the circuit breaker is open.
func (a *Adapter) IsAvailable(context.Context) bool {
	return a.cb == nil || a.cb.State() != resilience.StateOpen
}

// Execute is Do under the provider.RequestResponse signature.
func (a *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	return a.Do(ctx, req)
}

// Close releases idle connections.
func (a *Adapter) Close(context.Context) error {
	a.client.CloseIdleConnections()
	return nil
}

// Do sends req. Non-2xx responses are returned together with an *Error so
// the body stays available. Retry applies only to idempotent requests with
// replayable bodies, and only when enabled.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	if !a.config.Retry.Enabled || !req.Idempotent() {
		return a.doOnce(ctx, req)
	}

	retryCfg := a.config.Retry
	retryCfg.RetryIf = IsRetryable
	retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		a.log.Debug("retrying request", logger.Fields(logger.FieldAttempt, attempt, logger.FieldError, err.Error(), "backoff_ms", backoff.Milliseconds()))
	}

	var last *Response
	resp, err := resilience.Retry(ctx, retryCfg, func(ctx context.Context) (*Response, error) {
		r, err := a.doOnce(ctx, req)
		last = r
		return r, err
	})
	if err != nil {
		return last, err
	}
	return resp, nil
}

func (a *Adapter) doOnce(ctx context.Context, req Request) (*Response, error) {
	if a.rl != nil {
		if err := a.rl.Wait(ctx); err != nil {
			return nil, contextError(err)
		}
	}
	if a.cb == nil {
		return a.send(ctx, req)
	}

	var resp *Response
	err := a.cb.Execute(func() error {
		var err error
		resp, err = a.send(ctx, req)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, &Error{Code: ErrCodeCircuitOpen, Message: err.Error(), Err: err}
	}
	return resp, err
}

func (a *Adapter) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fields := logger.Fields("method", httpReq.Method, logger.FieldURL, httpReq.URL.Redacted(),
		logger.FieldRequestID, httpReq.Header.Get(HeaderRequestID))

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.log.Debug("request failed", logger.MergeWithError(fields, err))
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, newTimeoutError(err)
		}
		return nil, newConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.config.MaxResponseBytes))
	if err != nil {
		return nil, newConnectionError(fmt.Errorf("read response body: %w", err))
	}

	fields[logger.FieldStatus] = resp.StatusCode
	a.log.Debug("request completed", logger.MergeWithDuration(fields, time.Since(start)))

	result := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if classErr := ClassifyStatus(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, newRequestError("encode body", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, a.resolve(req.Path), body)
	if err != nil {
		if c, ok := body.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, newRequestError("create request", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get(HeaderRequestID) == "" {
		id := logger.RequestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		httpReq.Header.Set(HeaderRequestID, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	auth := a.auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

func (a *Adapter) resolve(path string) string {
	if a.config.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(a.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// contextError keeps caller cancellation unclassified and reports an
// expired deadline as a timeout.
func contextError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return newTimeoutError(err)
}

// countsAgainstCircuit counts transport failures and 5xx responses only.
func countsAgainstCircuit(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return true
	}
	return e.IsTransport() || e.Code == ErrCodeServer
}

var _ provider.RequestResponse[Request, *Response] = (*Adapter)(nil)
