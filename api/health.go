package api

import (
	"context"

	"github.com/kbukum/scribekit/httpclient"
)

// Health is the service's self-reported state.
type Health struct {
	Status string          `json:"status"`
	Engine string          `json:"engine,omitempty"`
	APIs   map[string]bool `json:"apis,omitempty"`
}

// Healthy reports whether the service answered "healthy".
func (h *Health) Healthy() bool { return h != nil && h.Status == "healthy" }

// Health probes the service root health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	h, err := httpclient.Get[*Health](ctx, c.http, c.rootURL()+"/health")
	if err != nil {
		return nil, mapError(err, MsgLoadFailed, false)
	}
	if h == nil {
		h = &Health{}
	}
	return h, nil
}
