package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/scribekit/component"
)

// Component manages a Client's lifecycle.
type Component struct {
	cfg    Config
	client *Client
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the component; the client is created in Start.
func NewComponent(cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg}
}

// Client returns the client, or nil before Start.
func (c *Component) Client() *Client { return c.client }

func (c *Component) Name() string { return "redis" }

// Start connects and pings the server.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return err
	}
	c.client = client
	return nil
}

func (c *Component) Stop(context.Context) error {
	return c.client.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.client == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	case !c.client.IsAvailable(ctx):
		h.Status, h.Message = component.StatusUnhealthy, "ping failed"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "session-store",
		Details: fmt.Sprintf("%s db=%d prefix=%s", c.cfg.Addr, c.cfg.DB, c.cfg.KeyPrefix),
	}
}
