package httpclient

import (
	"context"
	"net/http"
	"testing"
)

type fakeDoer struct {
	resp *Response
	err  error
	req  Request
}

func (f *fakeDoer) Do(_ context.Context, req Request) (*Response, error) {
	f.req = req
	return f.resp, f.err
}

type history struct {
	Items []struct {
		TaskID string `json:"task_id"`
	} `json:"items"`
}

func TestGetDecodes(t *testing.T) {
	d := &fakeDoer{resp: &Response{StatusCode: 200, Body: []byte(`{"items":[{"task_id":"a"},{"task_id":"b"}]}`)}}
	h, err := Get[history](context.Background(), d, "history", WithQuery("limit", "2"), WithHeader("X-Trace", "1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(h.Items) != 2 || h.Items[1].TaskID != "b" {
		t.Errorf("decoded = %+v", h)
	}
	if d.req.Method != http.MethodGet || d.req.Query.Get("limit") != "2" || d.req.Headers["X-Trace"] != "1" {
		t.Errorf("request = %+v", d.req)
	}
}

func TestPostEmptyBody(t *testing.T) {
	d := &fakeDoer{resp: &Response{StatusCode: 204}}
	out, err := Post[map[string]any](context.Background(), d, "records", map[string]string{"a": "b"})
	if err != nil || out != nil {
		t.Fatalf("out = %v, err = %v", out, err)
	}
}

func TestSendDecodeError(t *testing.T) {
	d := &fakeDoer{resp: &Response{StatusCode: 200, Body: []byte(`<html>`)}}
	_, err := Get[history](context.Background(), d, "history")
	e, ok := AsError(err)
	if !ok || e.Code != ErrCodeServer {
		t.Fatalf("err = %v", err)
	}
}

func TestSendPropagatesError(t *testing.T) {
	statusErr := ClassifyStatus(500, []byte("boom"))
	d := &fakeDoer{resp: &Response{StatusCode: 500}, err: statusErr}
	_, err := Get[history](context.Background(), d, "history")
	if !IsServerError(err) {
		t.Fatalf("err = %v", err)
	}
}
