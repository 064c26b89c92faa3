// Package session models the bearer credential as an explicit object with a
// load, save and clear lifecycle over a pluggable store: in memory, an
// owner-only file optionally encrypted, or redis.
package session
