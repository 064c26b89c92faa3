// Package server runs a Gin engine behind net/http with graceful shutdown,
// cleartext HTTP/2 and a standard middleware stack. It hosts the fake
// transcription API in tests and local development.
package server
