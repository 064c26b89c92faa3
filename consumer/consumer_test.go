package consumer

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/transcription"
)

type fakeBackend struct {
	summaries atomic.Int32
	drafts    atomic.Int32
	saves     atomic.Int32
	release   chan struct{}
	err       error
}

func (f *fakeBackend) Summarize(ctx context.Context, text string, kind transcription.SummaryKind) (string, error) {
	f.summaries.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return string(kind) + ":" + text, nil
}

func (f *fakeBackend) DraftRecord(_ context.Context, req transcription.DraftRequest) (*transcription.Draft, error) {
	f.drafts.Add(1)
	return &transcription.Draft{Content: req.Text, CategoryLabel: req.Category}, nil
}

func (f *fakeBackend) SaveRecord(_ context.Context, req transcription.SaveRequest) (*transcription.Record, error) {
	f.saves.Add(1)
	return &transcription.Record{ID: "r1", Title: req.Title}, nil
}

func TestSummarizeDeduplicatesConcurrentCalls(t *testing.T) {
	b := &fakeBackend{release: make(chan struct{})}
	a := New(b)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := a.Summarize(context.Background(), "same text", transcription.SummaryShort)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = s
		}(i)
	}
	for b.summaries.Load() < 1 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(b.release)
	wg.Wait()

	if n := b.summaries.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
	for i, s := range results {
		if s != "short:same text" {
			t.Errorf("result %d = %q", i, s)
		}
	}
}

func TestDistinctInputsAreNotShared(t *testing.T) {
	b := &fakeBackend{}
	a := New(b)
	ctx := context.Background()
	if _, err := a.Summarize(ctx, "one", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Summarize(ctx, "one", transcription.SummaryDetailed); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Summarize(ctx, "two", ""); err != nil {
		t.Fatal(err)
	}
	if b.summaries.Load() != 3 {
		t.Errorf("backend called %d times, want 3", b.summaries.Load())
	}
}

func TestSequentialCallsRunAgain(t *testing.T) {
	b := &fakeBackend{}
	a := New(b)
	for i := 0; i < 2; i++ {
		if _, err := a.GenerateDraft(context.Background(), transcription.DraftRequest{Text: "t", Category: "meeting"}); err != nil {
			t.Fatal(err)
		}
	}
	if b.drafts.Load() != 2 {
		t.Errorf("drafts = %d, want 2", b.drafts.Load())
	}
}

func TestValidationRejectsBeforeBackend(t *testing.T) {
	b := &fakeBackend{}
	a := New(b)
	ctx := context.Background()

	if _, err := a.Summarize(ctx, "", ""); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("empty text: %v", err)
	}
	if _, err := a.Summarize(ctx, "x", "epic"); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("bad kind: %v", err)
	}
	if _, err := a.GenerateDraft(ctx, transcription.DraftRequest{Text: "x"}); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("missing category: %v", err)
	}
	if _, err := a.SaveDraft(ctx, transcription.SaveRequest{Category: "c", Content: "x"}); errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("missing title: %v", err)
	}
	if b.summaries.Load()+b.drafts.Load()+b.saves.Load() != 0 {
		t.Error("backend reached with invalid input")
	}

	rec, err := a.SaveDraft(ctx, transcription.SaveRequest{Category: "c", Title: "T", Content: "x", TaskID: "t1"})
	if err != nil || rec.ID != "r1" {
		t.Errorf("SaveDraft = %+v, %v", rec, err)
	}
}

func TestErrorsAreNotRetried(t *testing.T) {
	boom := errors.ServerError(500, "Summary generation failed.")
	b := &fakeBackend{err: boom}
	a := New(b)
	_, err := a.Summarize(context.Background(), "x", "")
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if b.summaries.Load() != 1 {
		t.Errorf("backend called %d times, want 1", b.summaries.Load())
	}
}

func TestCallerContextEndsWait(t *testing.T) {
	b := &fakeBackend{release: make(chan struct{})}
	defer close(b.release)
	a := New(b)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.Summarize(ctx, "slow", "")
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
}

func TestKey(t *testing.T) {
	k1, _ := Key(ActionSummarize, SummaryRequest{Text: "a"})
	k2, _ := Key(ActionSummarize, SummaryRequest{Text: "a"})
	k3, _ := Key(ActionDraft, SummaryRequest{Text: "a"})
	k4, _ := Key(ActionSummarize, SummaryRequest{Text: "b"})
	if k1 != k2 {
		t.Error("equal inputs produced different keys")
	}
	if k1 == k3 || k1 == k4 {
		t.Error("distinct actions or inputs share a key")
	}
}

func TestJoinedCallerSurvivesFirstCallerCancel(t *testing.T) {
	b := &fakeBackend{release: make(chan struct{})}
	a := New(b)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.Summarize(firstCtx, "same", "")
		firstErr <- err
	}()
	for b.summaries.Load() < 1 {
		time.Sleep(time.Millisecond)
	}

	type outcome struct {
		summary string
		err     error
	}
	joined := make(chan outcome, 1)
	go func() {
		s, err := a.Summarize(context.Background(), "same", "")
		joined <- outcome{s, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !stderrors.Is(err, context.Canceled) {
		t.Errorf("first caller err = %v", err)
	}
	close(b.release)

	got := <-joined
	if got.err != nil || got.summary != "short:same" {
		t.Errorf("joined caller = %q, %v", got.summary, got.err)
	}
	if n := b.summaries.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}
