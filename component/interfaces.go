package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is a component's self-reported health.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a resource with a start/stop lifecycle: the API client, a
// session backend, the fake API server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It must be safe after a failed Start.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is the one-line summary a component reports at startup.
type Description struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable is implemented by components that report a Description.
type Describable interface {
	Describe() Description
}

// Route is an HTTP route served by a component.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that serve HTTP.
type RouteProvider interface {
	Routes() []Route
}
