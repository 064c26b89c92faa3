package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/scribekit/component"
)

// Summary renders the startup report: components, routes and health.
type Summary struct {
	service  string
	version  string
	duration time.Duration
}

// NewSummary creates a summary for a service.
func NewSummary(service, version string) *Summary {
	return &Summary{service: service, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) { s.duration = d }

// Write renders the summary for the components in registry.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.service, s.version, s.duration.Seconds())
	if registry == nil {
		return
	}

	comps := registry.All()
	if len(comps) > 0 {
		fmt.Fprintln(w, "components:")
		for i, c := range comps {
			name, details := c.Name(), ""
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name != "" {
					name = desc.Name
				}
				details = desc.Details
				if desc.Port > 0 {
					details = fmt.Sprintf("%s (:%d)", details, desc.Port)
				}
			}
			fmt.Fprintf(w, "  %s %s %s\n", treePrefix(i, len(comps)), name, details)
		}
	}

	for _, c := range comps {
		rp, ok := c.(component.RouteProvider)
		if !ok {
			continue
		}
		routes := rp.Routes()
		fmt.Fprintf(w, "routes (%d):\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "  %s %-6s %s\n", treePrefix(i, len(routes)), r.Method, r.Path)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		fmt.Fprintln(w, "health:")
		for i, h := range health {
			line := fmt.Sprintf("  %s %s %s", treePrefix(i, len(health)), h.Name, h.Status)
			if h.Message != "" {
				line += ": " + h.Message
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
