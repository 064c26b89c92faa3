package httpclient

import (
	"net/http"
	"net/url"
)

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is resolved against Config.BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   url.Values
	// Body accepts nil, io.Reader, []byte, string, url.Values (form
	// encoded), *MultipartBody, or any value to be JSON encoded.
	Body any
	// Auth overrides the adapter-level auth for this request.
	Auth *AuthConfig
}

// Idempotent reports whether the request may be sent again safely.
func (r Request) Idempotent() bool {
	switch r.Method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
