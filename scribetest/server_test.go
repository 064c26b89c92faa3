package scribetest_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/auth/token"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/scribetest"
	"github.com/kbukum/scribekit/transcription"
)

func newClient(t *testing.T, baseURL string, tok *string) *api.Client {
	t.Helper()
	opts := []api.Option{}
	if tok != nil {
		opts = append(opts, api.WithTokenSource(api.TokenFunc(func() string { return *tok })))
	}
	c, err := api.New(httpclient.Config{BaseURL: baseURL}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func upload(name string) transcription.Request {
	return transcription.Request{File: strings.NewReader("RIFF...."), FileName: name, Size: 8}
}

func TestScriptedStatusSequence(t *testing.T) {
	fake, baseURL := scribetest.Start(t, scribetest.WithScript(scribetest.Queued, scribetest.Processing, scribetest.Completed))
	c := newClient(t, baseURL, nil)
	ctx := context.Background()

	sub, err := c.Transcribe(ctx, upload("a.mp3"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sub.IsQueued() {
		t.Fatalf("submission = %+v, want queued", sub)
	}

	want := []transcription.Status{
		transcription.StatusQueued, transcription.StatusProcessing,
		transcription.StatusCompleted, transcription.StatusCompleted,
	}
	for i, w := range want {
		job, err := c.Status(ctx, sub.TaskID)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status != w {
			t.Errorf("poll %d: status = %s, want %s", i, job.Status, w)
		}
		if w == transcription.StatusCompleted && job.Result.RawText != "Transcript of a.mp3" {
			t.Errorf("result = %+v", job.Result)
		}
	}
	if got := fake.Polls(sub.TaskID); got != len(want) {
		t.Errorf("Polls = %d, want %d", got, len(want))
	}

	history, err := c.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].TaskID != sub.TaskID {
		t.Errorf("history = %+v, want one entry for %s", history, sub.TaskID)
	}
}

func TestSynchronousUpload(t *testing.T) {
	fake, baseURL := scribetest.Start(t, scribetest.WithSynchronous(), scribetest.WithTranscript("hello world"))
	c := newClient(t, baseURL, nil)

	req := upload("b.wav")
	req.Correct = true
	sub, err := c.Transcribe(context.Background(), req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sub.IsQueued() || sub.Result == nil {
		t.Fatalf("submission = %+v, want a result", sub)
	}
	if sub.Result.RawText != "hello world" || sub.Result.CorrectedText != "hello world." || !sub.Result.DarakbangOptimized {
		t.Errorf("result = %+v", sub.Result)
	}
	if fake.Count(scribetest.EndpointStatus) != 0 {
		t.Error("status endpoint was called")
	}
}

func TestJobErrorStep(t *testing.T) {
	fake, baseURL := scribetest.Start(t)
	fake.AddTask("t-err", "x.mp3", scribetest.Failed("decoder crashed"))
	fake.AddTask("t-bare", "y.mp3", scribetest.Failed(""))
	c := newClient(t, baseURL, nil)

	job, err := c.Status(context.Background(), "t-err")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != transcription.StatusError || job.Error != "decoder crashed" {
		t.Errorf("job = %+v", job)
	}
	job, err = c.Status(context.Background(), "t-bare")
	if err != nil {
		t.Fatal(err)
	}
	if job.Error != "" {
		t.Errorf("bare error job carries %q", job.Error)
	}

	job, err = c.Status(context.Background(), "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != transcription.StatusNotFound {
		t.Errorf("unknown task status = %s", job.Status)
	}
}

func postFile(t *testing.T, url, name string, size int) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", name)
	part.Write(bytes.Repeat([]byte{0}, size))
	w.Close()
	resp, err := http.Post(url+"/transcribe", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUploadRejections(t *testing.T) {
	_, baseURL := scribetest.Start(t, scribetest.WithMaxUpload(1024))

	tests := []struct {
		name, file string
		size       int
		wantDetail string
	}{
		{"too large", "a.mp3", 2048, "File too large. Maximum size is 1KB"},
		{"bad extension", "a.txt", 10, "Unsupported file format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postFile(t, baseURL, tt.file, tt.size)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var buf bytes.Buffer
			buf.ReadFrom(resp.Body)
			if got := api.ServerMessage(buf.Bytes()); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}

func TestAuthFlow(t *testing.T) {
	_, baseURL := scribetest.Start(t, scribetest.WithUser("ann@example.com", "password1", "Ann"))
	var tok string
	c := newClient(t, baseURL, &tok)
	ctx := context.Background()

	_, err := c.Login(ctx, transcription.Credentials{Email: "ann@example.com", Password: "wrong-pass"})
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) || errors.UserMessage(err) != scribetest.MsgInvalidLogin {
		t.Fatalf("bad login err = %v", err)
	}

	if _, err := c.Me(ctx); !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Errorf("Me without token err = %v", err)
	}

	resp, err := c.Login(ctx, transcription.Credentials{Email: "ann@example.com", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}
	tok = resp.Token
	user, err := c.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "ann@example.com" || user.Name != "Ann" {
		t.Errorf("user = %+v", user)
	}

	if _, err := c.Signup(ctx, transcription.Credentials{Email: "ann@example.com", Password: "password2"}); err == nil {
		t.Error("duplicate signup accepted")
	}
	created, err := c.Signup(ctx, transcription.Credentials{Email: "bob@example.com", Password: "password2"})
	if err != nil {
		t.Fatal(err)
	}
	if created.User.Name != "bob" || created.Token == "" {
		t.Errorf("signup = %+v", created)
	}
}

func TestRecordsRequireAuthAndAreScoped(t *testing.T) {
	fake, baseURL := scribetest.Start(t,
		scribetest.WithUser("ann@example.com", "password1", "Ann"),
		scribetest.WithUser("bob@example.com", "password2", "Bob"),
	)
	var tok string
	c := newClient(t, baseURL, &tok)
	ctx := context.Background()

	_, err := c.DraftRecord(ctx, transcription.DraftRequest{Text: "t", Category: "sermon"})
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("anonymous draft err = %v", err)
	}

	tok, _ = fake.IssueToken("ann@example.com")
	draft, err := c.DraftRecord(ctx, transcription.DraftRequest{Text: "grace", Category: "sermon"})
	if err != nil {
		t.Fatal(err)
	}
	if draft.CategoryLabel != "Sermon notes" || !strings.Contains(draft.Content, "grace") {
		t.Errorf("draft = %+v", draft)
	}
	rec, err := c.SaveRecord(ctx, transcription.SaveRequest{Category: "sermon", Title: "Sunday", Content: draft.Content})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Errorf("record = %+v", rec)
	}

	tok, _ = fake.IssueToken("bob@example.com")
	recs, err := c.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("bob sees %d records", len(recs))
	}
	tok, _ = fake.IssueToken("ann@example.com")
	if recs, _ = c.Records(ctx); len(recs) != 1 {
		t.Errorf("ann sees %d records, want 1", len(recs))
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	short, err := token.NewService(token.Config{Secret: "s", TTL: time.Nanosecond})
	if err != nil {
		t.Fatal(err)
	}
	fake, baseURL := scribetest.Start(t, scribetest.WithTokens(short), scribetest.WithUser("ann@example.com", "password1", ""))
	tok, _ := fake.IssueToken("ann@example.com")
	time.Sleep(time.Millisecond)
	c := newClient(t, baseURL, &tok)
	if _, err := c.Me(context.Background()); !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestFailAndCount(t *testing.T) {
	fake, baseURL := scribetest.Start(t)
	c := newClient(t, baseURL, nil)
	ctx := context.Background()

	fake.Fail(scribetest.EndpointSummarize, http.StatusInternalServerError, "")
	_, err := c.Summarize(ctx, "text", transcription.SummaryShort)
	if errors.UserMessage(err) != api.MsgSummaryFailed {
		t.Errorf("fallback message = %q", errors.UserMessage(err))
	}

	fake.Fail(scribetest.EndpointSummarize, http.StatusBadGateway, "model overloaded")
	_, err = c.Summarize(ctx, "text", transcription.SummaryShort)
	if errors.UserMessage(err) != "model overloaded" {
		t.Errorf("server message = %q", errors.UserMessage(err))
	}

	fake.Heal(scribetest.EndpointSummarize)
	summary, err := c.Summarize(ctx, "text", transcription.SummaryShort)
	if err != nil || summary != "text" {
		t.Errorf("Summarize = %q, %v", summary, err)
	}
	if got := fake.Count(scribetest.EndpointSummarize); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestHealthAndOAuth(t *testing.T) {
	_, baseURL := scribetest.Start(t)
	c := newClient(t, baseURL, nil)
	ctx := context.Background()

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !h.Healthy() || h.Engine != scribetest.Engine || !h.APIs["gemini"] {
		t.Errorf("health = %+v", h)
	}

	u, err := c.OAuthURL(ctx, "google")
	if err != nil || !strings.HasPrefix(u, "https://accounts.google.com/") {
		t.Errorf("OAuthURL = %q, %v", u, err)
	}
	if _, err := c.OAuthURL(ctx, "myspace"); err == nil {
		t.Error("unknown provider accepted")
	}
}
