// Package version exposes build information set through -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/scribekit/version.Version=1.2.0" ./cmd/scribe
//
// VCS details fall back to the data embedded by the Go toolchain.
package version
