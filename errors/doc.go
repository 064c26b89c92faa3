// Package errors provides the structured error type used across scribekit.
//
// Every failure surfaced to callers is an *AppError carrying a stable code,
// a human-readable message and, when it came from the remote API, the HTTP
// status. ClassOf groups errors into the four families a caller reacts to:
// local validation, transport, server-reported and remote job failures.
package errors
