package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	ErrCodeConnection
	// ErrCodeAuth is a 401 or 403 response.
	ErrCodeAuth
	ErrCodeNotFound
	ErrCodeRateLimit
	// ErrCodeClient is any other 4xx response.
	ErrCodeClient
	ErrCodeServer
	// ErrCodeRequest is a request that could not be built.
	ErrCodeRequest
	// ErrCodeCircuitOpen is a request refused by the circuit breaker.
	ErrCodeCircuitOpen
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	case ErrCodeRequest:
		return "request"
	case ErrCodeCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Error is a classified HTTP client error. Status errors keep the response
// body so callers can extract the server's message.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether the request failed before a response arrived.
func (e *Error) IsTransport() bool {
	switch e.Code {
	case ErrCodeTimeout, ErrCodeConnection, ErrCodeCircuitOpen:
		return true
	default:
		return false
	}
}

func newTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

func newConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

func newRequestError(op string, err error) *Error {
	return &Error{Code: ErrCodeRequest, Message: op + ": " + err.Error(), Err: err}
}

// ClassifyStatus converts a non-2xx status into an *Error. It returns nil
// for 2xx.
func ClassifyStatus(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	e := &Error{StatusCode: status, Message: http.StatusText(status), Body: body}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case status == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case status >= 400 && status < 500:
		e.Code = ErrCodeClient
	default:
		e.Code = ErrCodeServer
		e.Retryable = status >= 500
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func hasCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

func IsTimeout(err error) bool    { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }
func IsAuth(err error) bool       { return hasCode(err, ErrCodeAuth) }
func IsNotFound(err error) bool   { return hasCode(err, ErrCodeNotFound) }
func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServer)
}

// IsRetryable reports whether err is a classified error marked retryable.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}
