package scribe

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/component"
	"github.com/kbukum/scribekit/consumer"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/session"
	"github.com/kbukum/scribekit/transcription"

	// Input file sources for OpenFile.
	_ "github.com/kbukum/scribekit/storage/local"
	_ "github.com/kbukum/scribekit/storage/s3"
)

var (
	_ transcription.Provider = (*Client)(nil)
	_ component.Component    = (*Client)(nil)
	_ component.Describable  = (*Client)(nil)
)

// Client is the entry point for the transcription workflow: upload, poll,
// consume the result and manage the login session.
type Client struct {
	cfg       Config
	log       *logger.Logger
	metrics   *observability.Metrics
	api       *api.Client
	submitter *job.Submitter
	poller    *job.Poller
	tracker   *job.Tracker
	actions   *consumer.Actions

	mu         sync.RWMutex
	sess       *session.Session
	closeStore func() error
	telemetry  *observability.Telemetry
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	log     *logger.Logger
	metrics *observability.Metrics
	store   session.Store
}

// WithLogger sets the base logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithMetrics records operations on m instead of the global meter.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithSessionStore keeps the credential in store instead of the one
// configured in Config.Session.
func WithSessionStore(store session.Store) Option {
	return func(o *clientOptions) { o.store = store }
}

// New builds a Client from cfg. A redis session store is connected by
// Start; the file and memory stores are ready immediately.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("scribe")
	}
	if o.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter("scribe"))
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}

	cl := &Client{cfg: c, log: o.log, metrics: o.metrics}
	apiClient, err := api.New(c.API,
		api.WithLogger(o.log.WithComponent("api")),
		api.WithTokenSource(api.TokenFunc(cl.token)),
	)
	if err != nil {
		return nil, err
	}
	cl.api = apiClient

	jobOpts := []job.Option{job.WithMetrics(o.metrics)}
	cl.submitter = job.NewSubmitter(apiClient, c.Upload, append(jobOpts, job.WithLogger(o.log.WithComponent("job.submitter")))...)
	cl.poller = job.NewPoller(apiClient, c.Poll, append(jobOpts, job.WithLogger(o.log.WithComponent("job.poller")))...)
	cl.tracker = job.NewTracker(cl.poller, job.WithLogger(o.log.WithComponent("job.tracker")))
	cl.actions = consumer.New(apiClient,
		consumer.WithLogger(o.log.WithComponent("consumer")),
		consumer.WithMetrics(o.metrics),
	)

	switch {
	case o.store != nil:
		cl.sess = session.New(o.store, session.WithKey(c.Session.Key), session.WithLogger(o.log.WithComponent("session")))
	case c.Session.Store != session.StoreRedis:
		store, closeFn, err := session.NewStore(context.Background(), c.Session)
		if err != nil {
			return nil, err
		}
		cl.sess = session.New(store, session.WithKey(c.Session.Key), session.WithLogger(o.log.WithComponent("session")))
		cl.closeStore = closeFn
	}
	return cl, nil
}

// Name implements provider.Provider.
func (c *Client) Name() string { return "scribe" }

// IsAvailable reports whether the service answers its health probe.
func (c *Client) IsAvailable(ctx context.Context) bool {
	h, err := c.api.Health(ctx)
	return err == nil && h.Healthy()
}

// Start sets up telemetry, connects the session store if needed and loads
// the stored credential. An expired credential is cleared, not fatal.
func (c *Client) Start(ctx context.Context) error {
	tel, err := observability.Setup(ctx, c.cfg.Observability)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.telemetry = tel
	if c.sess == nil {
		store, closeFn, err := session.NewStore(ctx, c.cfg.Session)
		if err != nil {
			c.mu.Unlock()
			return stderrors.Join(err, tel.Shutdown(ctx))
		}
		c.sess = session.New(store, session.WithKey(c.cfg.Session.Key), session.WithLogger(c.log.WithComponent("session")))
		c.closeStore = closeFn
	}
	sess := c.sess
	c.mu.Unlock()

	cred, err := sess.Load(ctx)
	switch {
	case errors.HasCode(err, errors.ErrCodeTokenExpired):
		c.log.Info("stored login expired; log in again")
	case err != nil:
		c.log.Warn("failed to load stored login", logger.ErrorFields("session.load", err))
	case cred != nil:
		c.log.Debug("restored login", logger.Fields(logger.FieldEmail, cred.Email))
	}
	return nil
}

// Stop cancels any tracked job and releases the store, telemetry and
// transport.
func (c *Client) Stop(ctx context.Context) error {
	c.tracker.Stop()

	c.mu.Lock()
	tel, closeStore := c.telemetry, c.closeStore
	c.telemetry, c.closeStore = nil, nil
	c.mu.Unlock()

	var errs []error
	if closeStore != nil {
		errs = append(errs, closeStore())
	}
	errs = append(errs, tel.Shutdown(ctx), c.api.Close(ctx))
	return stderrors.Join(errs...)
}

// Health maps the service health probe onto component health.
func (c *Client) Health(ctx context.Context) component.Health {
	h, err := c.api.Health(ctx)
	switch {
	case err != nil:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: errors.UserMessage(err)}
	case !h.Healthy():
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: h.Status}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (c *Client) Describe() component.Description {
	return component.Description{Name: "Transcription API", Type: "client", Details: c.api.BaseURL()}
}

// API returns the underlying endpoint client.
func (c *Client) API() *api.Client { return c.api }

// Actions returns the result consumer actions.
func (c *Client) Actions() *consumer.Actions { return c.actions }

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Session returns the credential session, or nil before Start when the
// redis store is configured.
func (c *Client) Session() *session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

func (c *Client) token() string {
	if s := c.Session(); s != nil {
		return s.Token()
	}
	return ""
}

func (c *Client) session() (*session.Session, error) {
	if s := c.Session(); s != nil {
		return s, nil
	}
	return nil, errors.NoSession().WithDetail("reason", "client not started")
}
