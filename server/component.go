package server

import (
	"context"
	"sort"
	"strings"

	"github.com/kbukum/scribekit/component"
)

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// systemPaths are listed after API routes in the startup summary.
var systemPaths = map[string]bool{"/health": true}

// Component runs a Server under the component lifecycle.
type Component struct {
	name    string
	server  *Server
	started bool
}

// NewComponent wraps s. name defaults to "http-server".
func NewComponent(name string, s *Server) *Component {
	if name == "" {
		name = "http-server"
	}
	return &Component{name: name, server: s}
}

func (c *Component) Name() string { return c.name }

// Server returns the wrapped server.
func (c *Component) Server() *Server { return c.server }

func (c *Component) Start(ctx context.Context) error {
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	c.started = true
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	if !c.started {
		return nil
	}
	c.started = false
	return c.server.Stop(ctx)
}

func (c *Component) Health(context.Context) component.Health {
	if !c.started {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "HTTP Server", Type: "server", Details: c.server.Addr(), Port: c.server.Port()}
}

// Routes lists the registered routes: API routes by path, then system
// routes.
func (c *Component) Routes() []component.Route {
	ginRoutes := c.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys, jSys := systemPaths[ginRoutes[i].Path], systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)})
	}
	return routes
}

// formatHandlerName shortens Gin's handler names:
// "github.com/x/scribetest.(*Server).status-fm" becomes "Server.status".
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 && parts[1] != "" && strings.ToLower(parts[0]) == parts[0] {
		name = parts[1]
	}
	if i := strings.Index(name, ".func"); i > 0 {
		name = name[:i]
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
