// Package component defines the lifecycle contract shared by the API
// client, session backends and the fake API server, and a Registry that
// starts and stops them in order.
package component
