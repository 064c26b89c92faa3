package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Doer sends a request. *Adapter implements it; tests and middleware may
// supply their own.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// RequestOption configures a single typed request.
type RequestOption func(*Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Add(key, value)
	}
}

// WithRequestAuth overrides authentication for the request.
func WithRequestAuth(auth *AuthConfig) RequestOption {
	return func(r *Request) { r.Auth = auth }
}

// Get sends a GET and decodes the JSON response into T.
func Get[T any](ctx context.Context, d Doer, path string, opts ...RequestOption) (T, error) {
	return Send[T](ctx, d, http.MethodGet, path, nil, opts...)
}

// Post sends a POST with body (see Request.Body) and decodes the response.
func Post[T any](ctx context.Context, d Doer, path string, body any, opts ...RequestOption) (T, error) {
	return Send[T](ctx, d, http.MethodPost, path, body, opts...)
}

// Send builds a request from the arguments, sends it and decodes a 2xx JSON
// body into T. On failure the zero T and the transport or status error are
// returned; status errors keep the body in (*Error).Body.
func Send[T any](ctx context.Context, d Doer, method, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := d.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, &Error{
			StatusCode: resp.StatusCode,
			Code:       ErrCodeServer,
			Message:    fmt.Sprintf("decode response: %v", err),
			Body:       resp.Body,
			Err:        err,
		}
	}
	return out, nil
}
