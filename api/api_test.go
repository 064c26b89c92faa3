package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/transcription"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(httpclient.Config{BaseURL: srv.URL + "/api"}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func audioRequest() transcription.Request {
	return transcription.Request{File: strings.NewReader("RIFFdata"), FileName: "sermon.wav", Size: 8, Correct: true}
}

func TestTranscribeQueued(t *testing.T) {
	var gotAuth, gotUA, gotReqID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcribe" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get(httpclient.HeaderRequestID)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		for field, want := range map[string]string{"language": "ko", "transcription_type": "sermon", "correct": "true"} {
			if got := r.FormValue(field); got != want {
				t.Errorf("%s = %q, want %q", field, got, want)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFFdata" || hdr.Filename != "sermon.wav" {
			t.Errorf("file = %q (%s)", data, hdr.Filename)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("part content type = %q", ct)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "task_id": "task-1", "status": "queued", "engine": "whisper"})
	}), WithTokenSource(TokenFunc(func() string { return "tok" })))

	sub, err := c.Transcribe(context.Background(), audioRequest(), nil)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !sub.IsQueued() || sub.TaskID != "task-1" || sub.Engine != "whisper" {
		t.Errorf("submission = %+v", sub)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.HasPrefix(gotUA, "scribe/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotReqID == "" {
		t.Error("missing request id")
	}
}

func TestTranscribeSynchronous(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "completed", "task_id": "t2", "raw_text": "hello", "corrected_text": "Hello.", "characters": 6,
		})
	}))
	sub, err := c.Transcribe(context.Background(), audioRequest(), nil)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if sub.IsQueued() || sub.Result == nil {
		t.Fatalf("expected synchronous result, got %+v", sub)
	}
	if sub.Result.Text() != "Hello." || sub.Result.Characters != 6 {
		t.Errorf("result = %+v", sub.Result)
	}
}

func TestTranscribeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    errors.ErrorCode
		message string
	}{
		{"detail string", 400, `{"detail":"File too large. Maximum size is 100MB"}`, errors.ErrCodeSubmissionFailed, "File too large. Maximum size is 100MB"},
		{"no body", 500, ``, errors.ErrCodeSubmissionFailed, MsgTranscriptionFailed},
		{"unauthorized", 401, `{"detail":"Invalid token"}`, errors.ErrCodeUnauthorized, "Invalid token"},
		{"missing task id", 200, `{"status":"queued"}`, errors.ErrCodeSubmissionFailed, MsgTranscriptionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			_, err := c.Transcribe(context.Background(), audioRequest(), nil)
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tt.code || appErr.Message != tt.message {
				t.Errorf("got %s %q, want %s %q", appErr.Code, appErr.Message, tt.code, tt.message)
			}
		})
	}
}

func TestTranscribeRejectsInvalidRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	req := audioRequest()
	req.ContentType = "podcast"
	_, err := c.Transcribe(context.Background(), req, nil)
	if errors.ClassOf(err) != errors.ClassValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Error("invalid request reached the server")
	}
}

func TestStatus(t *testing.T) {
	responses := map[string]any{
		"done":    map[string]any{"task_id": "done", "status": "completed", "raw_text": "r", "corrected_text": "c", "characters": 1},
		"failed":  map[string]any{"task_id": "failed", "status": "error", "error": "boom"},
		"running": map[string]any{"task_id": "running", "status": "processing"},
		"missing": map[string]any{"task_id": "missing", "status": "not_found"},
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/status/")
		writeJSON(w, http.StatusOK, responses[id])
	}))
	ctx := context.Background()

	job, err := c.Status(ctx, "done")
	if err != nil || job.Status != transcription.StatusCompleted || job.Result == nil || job.Result.Text() != "c" {
		t.Fatalf("done: %+v, %v", job, err)
	}
	job, err = c.Status(ctx, "failed")
	if err != nil || job.Status != transcription.StatusError || job.Error != "boom" || job.Result != nil {
		t.Fatalf("failed: %+v, %v", job, err)
	}
	job, err = c.Status(ctx, "running")
	if err != nil || !job.Status.IsPending() {
		t.Fatalf("running: %+v, %v", job, err)
	}
	job, err = c.Status(ctx, "missing")
	if err != nil || job.Status != transcription.StatusNotFound {
		t.Fatalf("missing: %+v, %v", job, err)
	}
	if _, err := c.Status(ctx, "../etc"); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("bad task id: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("text") != "long text" || r.PostForm.Get("summary_type") != "short" {
			t.Errorf("form = %v", r.PostForm)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": "short", "summary_type": "short"})
	}))
	got, err := c.Summarize(context.Background(), "long text", "")
	if err != nil || got != "short" {
		t.Fatalf("Summarize = %q, %v", got, err)
	}
}

func TestSummarizeFallbackMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.Summarize(context.Background(), "x", transcription.SummaryDetailed)
	if errors.UserMessage(err) != MsgSummaryFailed {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestRecordsAndHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records/draft", func(w http.ResponseWriter, r *http.Request) {
		var req transcription.DraftRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, transcription.Draft{Content: "# " + req.Text, CategoryLabel: "Minutes"})
	})
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req transcription.SaveRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			writeJSON(w, http.StatusOK, transcription.Record{ID: "r1", Title: req.Title, Category: req.Category})
			return
		}
		writeJSON(w, http.StatusOK, []transcription.Record{{ID: "r1"}, {ID: "r2"}})
	})
	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []transcription.HistoryItem{{TaskID: "a", Status: "completed", SummaryPreview: "p"}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	draft, err := c.DraftRecord(ctx, transcription.DraftRequest{Text: "notes", Category: "meeting"})
	if err != nil || draft.Content != "# notes" || draft.CategoryLabel != "Minutes" {
		t.Fatalf("DraftRecord = %+v, %v", draft, err)
	}
	rec, err := c.SaveRecord(ctx, transcription.SaveRequest{Category: "meeting", Title: "T", Content: "C"})
	if err != nil || rec.ID != "r1" || rec.Title != "T" {
		t.Fatalf("SaveRecord = %+v, %v", rec, err)
	}
	recs, err := c.Records(ctx)
	if err != nil || len(recs) != 2 {
		t.Fatalf("Records = %v, %v", recs, err)
	}
	hist, err := c.History(ctx)
	if err != nil || len(hist) != 1 || hist[0].SummaryPreview != "p" {
		t.Fatalf("History = %v, %v", hist, err)
	}
}

func TestAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "jwt", "user": map[string]string{"email": "a@b.co"}})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, transcription.User{Email: "a@b.co"})
	})
	mux.HandleFunc("/api/auth/oauth-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://idp.example/" + r.URL.Query().Get("provider")})
	})
	token := "bad"
	c := newTestClient(t, mux, WithTokenSource(TokenFunc(func() string { return token })))
	ctx := context.Background()

	resp, err := c.Login(ctx, transcription.Credentials{Email: "a@b.co", Password: "password1"})
	if err != nil || resp.Token != "jwt" {
		t.Fatalf("Login = %+v, %v", resp, err)
	}
	if _, err := c.Login(ctx, transcription.Credentials{Email: "nope", Password: "x"}); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("invalid credentials: %v", err)
	}

	_, err = c.Me(ctx)
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) || errors.UserMessage(err) != "Invalid token" {
		t.Fatalf("Me with bad token: %v", err)
	}
	token = "good"
	user, err := c.Me(ctx)
	if err != nil || user.Email != "a@b.co" {
		t.Fatalf("Me = %+v, %v", user, err)
	}

	u, err := c.OAuthURL(ctx, "google")
	if err != nil || u != "https://idp.example/google" {
		t.Fatalf("OAuthURL = %q, %v", u, err)
	}
}

func TestHealthUsesServiceRoot(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "engine": "whisper+gemini", "apis": map[string]bool{"gemini": true}})
	}))
	h, err := c.Health(context.Background())
	if err != nil || !h.Healthy() || !h.APIs["gemini"] {
		t.Fatalf("Health = %+v, %v", h, err)
	}
}

func TestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c, err := New(httpclient.Config{BaseURL: url + "/api"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.History(context.Background())
	if errors.ClassOf(err) != errors.ClassTransport {
		t.Errorf("class = %v (%v)", errors.ClassOf(err), err)
	}
}

func TestCanceledPassesThrough(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.History(ctx)
	if errors.ClassOf(err) != errors.ClassCanceled {
		t.Errorf("class = %v (%v)", errors.ClassOf(err), err)
	}
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"nope"}`, "nope"},
		{`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{`{"message":"m"}`, "m"},
		{`{"error":"e"}`, "e"},
		{`{"detail":"d","message":"m"}`, "d"},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := ServerMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("ServerMessage(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
