// Package middleware provides the Gin middleware used by the server
// package.
package middleware
