package job

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/transcription"
)

const testInterval = 20 * time.Millisecond

type step struct {
	status transcription.Status
	result *transcription.Result
	msg    string
	err    error
}

type scriptedFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
	times []time.Time
}

func (f *scriptedFetcher) Status(_ context.Context, taskID string) (*transcription.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.times = append(f.times, time.Now())
	i := f.calls - 1
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	s := f.steps[i]
	if s.err != nil {
		return nil, s.err
	}
	return &transcription.Job{TaskID: taskID, Status: s.status, Result: s.result, Error: s.msg}, nil
}

func (f *scriptedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pending() step { return step{status: transcription.StatusProcessing} }

func newTestPoller(f StatusFetcher, maxWait time.Duration) *Poller {
	return NewPoller(f, PollConfig{Interval: testInterval, MaxWait: maxWait, ProgressAfter: time.Hour})
}

func TestPollCadenceUntilTerminal(t *testing.T) {
	want := &transcription.Result{TaskID: "t1", Status: transcription.StatusCompleted, RawText: "raw", CorrectedText: "fixed", Characters: 5}
	f := &scriptedFetcher{steps: []step{
		{status: transcription.StatusQueued},
		{status: transcription.StatusProcessing},
		{status: transcription.StatusCompleted, result: want},
	}}
	var updates []Update
	start := time.Now()
	got, err := newTestPoller(f, 0).Poll(context.Background(), "t1", func(u Update) { updates = append(updates, u) })
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %+v, want %+v", got, want)
	}
	if f.count() != 3 {
		t.Fatalf("status requests = %d, want 3", f.count())
	}
	if first := f.times[0].Sub(start); first < testInterval/2 {
		t.Errorf("first request after %s, want about one interval", first)
	}
	for i := 1; i < len(f.times); i++ {
		if gap := f.times[i].Sub(f.times[i-1]); gap < testInterval/2 {
			t.Errorf("gap %d = %s, want about %s", i, gap, testInterval)
		}
	}
	if len(updates) != 2 || updates[0].Status != transcription.StatusQueued || updates[1].Phase != PhaseProcessing {
		t.Errorf("updates = %+v", updates)
	}

	time.Sleep(5 * testInterval)
	if f.count() != 3 {
		t.Errorf("requests after terminal status: %d", f.count())
	}
}

func TestPollJobError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"server message", "X", "X"},
		{"fallback", "", errors.DefaultJobFailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &scriptedFetcher{steps: []step{pending(), {status: transcription.StatusError, msg: tt.msg}}}
			_, err := newTestPoller(f, 0).Poll(context.Background(), "t1", nil)
			if !errors.HasCode(err, errors.ErrCodeJobFailed) {
				t.Fatalf("err = %v, want JOB_FAILED", err)
			}
			if got := errors.UserMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	f := &scriptedFetcher{steps: []step{pending()}}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := newTestPoller(f, 0).Poll(ctx, "t1", nil)
		errc <- err
	}()
	for f.count() < 2 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-errc; errors.ClassOf(err) != errors.ClassCanceled {
		t.Fatalf("err = %v, want canceled", err)
	}
	n := f.count()
	time.Sleep(5 * testInterval)
	if f.count() != n {
		t.Errorf("requests after cancel: %d -> %d", n, f.count())
	}
}

func TestPollRetriesTransientFailures(t *testing.T) {
	f := &scriptedFetcher{steps: []step{
		{err: errors.ConnectionFailed("api")},
		{err: errors.ServerError(503, "busy")},
		{err: errors.NotFound("task", "t1")},
		{status: transcription.StatusNotFound},
		{status: transcription.StatusCompleted, result: &transcription.Result{RawText: "ok"}},
	}}
	got, err := newTestPoller(f, 0).Poll(context.Background(), "t1", nil)
	if err != nil || got.RawText != "ok" {
		t.Fatalf("Poll = %+v, %v", got, err)
	}
	if f.count() != 5 {
		t.Errorf("requests = %d, want 5", f.count())
	}
}

func TestPollStopsOnAuthFailure(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{err: errors.Unauthorized("")}}}
	_, err := newTestPoller(f, 0).Poll(context.Background(), "t1", nil)
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if f.count() != 1 {
		t.Errorf("requests = %d, want 1", f.count())
	}
}

func TestPollMaxWait(t *testing.T) {
	f := &scriptedFetcher{steps: []step{pending()}}
	_, err := newTestPoller(f, 5*testInterval/2).Poll(context.Background(), "t1", nil)
	if !errors.HasCode(err, errors.ErrCodePollTimeout) {
		t.Fatalf("err = %v, want POLL_TIMEOUT", err)
	}
	if errors.ClassOf(err) != errors.ClassJob {
		t.Errorf("class = %v", errors.ClassOf(err))
	}
}

type routedFetcher map[string]*scriptedFetcher

func (r routedFetcher) Status(ctx context.Context, taskID string) (*transcription.Job, error) {
	return r[taskID].Status(ctx, taskID)
}

func TestTrackerReplacesActivePoll(t *testing.T) {
	slow := &scriptedFetcher{steps: []step{pending()}}
	fast := &scriptedFetcher{steps: []step{pending(), {status: transcription.StatusCompleted, result: &transcription.Result{RawText: "second"}}}}
	tracker := NewTracker(newTestPoller(routedFetcher{"first": slow, "second": fast}, 0))

	var firstCallbacks atomic.Int32
	first := tracker.Start(context.Background(), "first", Callbacks{
		OnComplete: func(*transcription.Result) { firstCallbacks.Add(1) },
		OnError:    func(error) { firstCallbacks.Add(1) },
	})
	for slow.count() < 1 {
		time.Sleep(time.Millisecond)
	}

	var completions atomic.Int32
	second := tracker.Start(context.Background(), "second", Callbacks{
		OnComplete: func(*transcription.Result) { completions.Add(1) },
	})

	if _, err := first.Wait(context.Background()); errors.ClassOf(err) != errors.ClassCanceled {
		t.Errorf("first Wait err = %v", err)
	}
	if first.State() != StateCanceled {
		t.Errorf("first state = %s", first.State())
	}
	res, err := second.Wait(context.Background())
	if err != nil || res.RawText != "second" {
		t.Fatalf("second Wait = %+v, %v", res, err)
	}
	if second.State() != StateSucceeded {
		t.Errorf("second state = %s", second.State())
	}

	n := slow.count()
	time.Sleep(5 * testInterval)
	if slow.count() != n {
		t.Errorf("stale poll kept running: %d -> %d", n, slow.count())
	}
	if firstCallbacks.Load() != 0 {
		t.Errorf("stopped handle fired %d callbacks", firstCallbacks.Load())
	}
	if completions.Load() != 1 {
		t.Errorf("OnComplete fired %d times", completions.Load())
	}
	if tracker.Current() != nil {
		t.Error("finished handle still current")
	}
}

func TestHandleStopSuppressesCallbacks(t *testing.T) {
	f := &scriptedFetcher{steps: []step{pending()}}
	tracker := NewTracker(newTestPoller(f, 0))
	var fired atomic.Int32
	h := tracker.Start(context.Background(), "t1", Callbacks{
		OnComplete: func(*transcription.Result) { fired.Add(1) },
		OnError:    func(error) { fired.Add(1) },
	})
	h.Stop()
	h.Stop()
	<-h.Done()
	if h.State() != StateCanceled || fired.Load() != 0 {
		t.Errorf("state = %s, callbacks = %d", h.State(), fired.Load())
	}
}

func TestTrackerReportsFailureOnce(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{status: transcription.StatusError, msg: "bad audio"}}}
	tracker := NewTracker(newTestPoller(f, 0))
	errs := make(chan error, 2)
	h := tracker.Start(context.Background(), "t1", Callbacks{OnError: func(err error) { errs <- err }})
	if _, err := h.Wait(context.Background()); errors.UserMessage(err) != "bad audio" {
		t.Fatalf("Wait err = %v", err)
	}
	if err := <-errs; errors.UserMessage(err) != "bad audio" {
		t.Errorf("OnError got %v", err)
	}
	select {
	case err := <-errs:
		t.Errorf("second OnError: %v", err)
	case <-time.After(3 * testInterval):
	}
	if h.State() != StateFailed {
		t.Errorf("state = %s", h.State())
	}
}

type countingUploader struct {
	calls atomic.Int32
	sub   *transcription.Submission
	read  int
}

func (u *countingUploader) Transcribe(_ context.Context, req transcription.Request, _ api.UploadProgress) (*transcription.Submission, error) {
	u.calls.Add(1)
	data, err := io.ReadAll(req.File)
	u.read = len(data)
	if err != nil {
		return nil, err
	}
	return u.sub, nil
}

func TestSubmitRejectsOversizedFileLocally(t *testing.T) {
	u := &countingUploader{sub: &transcription.Submission{Status: transcription.StatusQueued, TaskID: "t1"}}
	s := NewSubmitter(u, UploadConfig{MaxSize: 10})

	_, err := s.Submit(context.Background(), transcription.Request{File: strings.NewReader(strings.Repeat("a", 11)), FileName: "a.mp3"})
	if !errors.HasCode(err, errors.ErrCodeFileTooLarge) {
		t.Fatalf("err = %v, want FILE_TOO_LARGE", err)
	}
	if errors.ClassOf(err) != errors.ClassValidation {
		t.Errorf("class = %v", errors.ClassOf(err))
	}
	_, err = s.Submit(context.Background(), transcription.Request{File: strings.NewReader("a"), FileName: "a.mp3", Size: 11})
	if !errors.HasCode(err, errors.ErrCodeFileTooLarge) {
		t.Fatalf("declared size: err = %v", err)
	}
	if u.calls.Load() != 0 {
		t.Errorf("uploader called %d times", u.calls.Load())
	}
}

func TestSubmitBoundsUnknownSize(t *testing.T) {
	u := &countingUploader{sub: &transcription.Submission{Status: transcription.StatusQueued, TaskID: "t1"}}
	s := NewSubmitter(u, UploadConfig{MaxSize: 10})
	_, err := s.Submit(context.Background(), transcription.Request{File: io.MultiReader(strings.NewReader(strings.Repeat("a", 20))), FileName: "a.mp3"})
	if !errors.HasCode(err, errors.ErrCodeFileTooLarge) {
		t.Fatalf("err = %v, want FILE_TOO_LARGE", err)
	}
	if u.read > 11 {
		t.Errorf("read %d bytes past the limit", u.read)
	}
}

func TestSubmitValidatesRequest(t *testing.T) {
	u := &countingUploader{}
	s := NewSubmitter(u, UploadConfig{})
	if s.MaxSize() != DefaultMaxUploadSize {
		t.Errorf("MaxSize = %d", s.MaxSize())
	}
	_, err := s.Submit(context.Background(), transcription.Request{FileName: "a.mp3"})
	if errors.ClassOf(err) != errors.ClassValidation || u.calls.Load() != 0 {
		t.Errorf("missing file: %v (calls %d)", err, u.calls.Load())
	}
}

func TestSubmitAdvancesProgress(t *testing.T) {
	u := &countingUploader{sub: &transcription.Submission{Status: transcription.StatusQueued, TaskID: "t1"}}
	s := NewSubmitter(u, UploadConfig{})
	p := NewProgress(time.Hour)
	sub, err := s.SubmitWithProgress(context.Background(), transcription.Request{File: strings.NewReader("abc"), FileName: "a.wav"}, p)
	if err != nil || sub.TaskID != "t1" {
		t.Fatalf("Submit = %+v, %v", sub, err)
	}
	if p.Phase() != PhaseQueued {
		t.Errorf("phase = %s", p.Phase())
	}
	if u.read != 3 {
		t.Errorf("uploaded %d bytes", u.read)
	}
}

func TestProgressPhases(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProgress(3 * time.Second)
	p.now = func() time.Time { return now }

	if p.Phase() != PhaseIdle {
		t.Fatalf("initial phase = %s", p.Phase())
	}
	p.Begin()
	if p.Phase() != PhaseUploading {
		t.Fatalf("phase = %s", p.Phase())
	}
	now = now.Add(3 * time.Second)
	if p.Phase() != PhaseUploading {
		t.Errorf("phase at exactly 3s = %s", p.Phase())
	}
	now = now.Add(time.Millisecond)
	if p.Phase() != PhaseQueued {
		t.Errorf("phase after 3s = %s", p.Phase())
	}
	if got := p.Observe(transcription.StatusProcessing); got != PhaseProcessing {
		t.Errorf("Observe(processing) = %s", got)
	}
	if got := p.Observe(transcription.StatusQueued); got != PhaseProcessing {
		t.Errorf("phase went backwards to %s", got)
	}
	p.Sent(10)
	p.Sent(5)
	if p.BytesSent() != 10 {
		t.Errorf("BytesSent = %d", p.BytesSent())
	}
}

func TestPollConfigDefaults(t *testing.T) {
	var c PollConfig
	c.ApplyDefaults()
	if c.Interval != 2*time.Second || c.ProgressAfter != 3*time.Second || c.MaxWait != 0 {
		t.Errorf("defaults = %+v", c)
	}
	d := DefaultPollConfig()
	if d.MaxWait != 2*time.Hour {
		t.Errorf("DefaultPollConfig().MaxWait = %s", d.MaxWait)
	}
	bad := PollConfig{Interval: time.Second, MaxWait: time.Millisecond}
	if bad.Validate() == nil {
		t.Error("expected max_wait < interval to fail")
	}
}

func TestCompletedHandle(t *testing.T) {
	r := &transcription.Result{TaskID: "sync-1", RawText: "done"}
	h := CompletedHandle(r)
	if h.State() != StateSucceeded || h.TaskID() != "sync-1" {
		t.Fatalf("state=%s task=%q", h.State(), h.TaskID())
	}
	got, err := h.Wait(context.Background())
	if err != nil || got != r {
		t.Errorf("Wait = %v, %v", got, err)
	}
	h.Stop()
	if h.State() != StateSucceeded {
		t.Errorf("Stop changed a finished handle to %s", h.State())
	}
}

func TestReservationSupersededByNewerOne(t *testing.T) {
	older := &scriptedFetcher{steps: []step{pending()}}
	newer := &scriptedFetcher{steps: []step{pending()}}
	tracker := NewTracker(newTestPoller(routedFetcher{"older": older, "newer": newer}, 0))

	olderTicket := tracker.Reserve()
	newerTicket := tracker.Reserve()
	if tracker.Holds(olderTicket) || !tracker.Holds(newerTicket) {
		t.Fatal("only the latest reservation should hold the tracker")
	}

	// The newer upload finishes first.
	var fired atomic.Int32
	nh := tracker.StartReserved(context.Background(), newerTicket, "newer", nil, Callbacks{})
	oh := tracker.StartReserved(context.Background(), olderTicket, "older", nil, Callbacks{
		OnProgress: func(Update) { fired.Add(1) },
		OnComplete: func(*transcription.Result) { fired.Add(1) },
		OnError:    func(error) { fired.Add(1) },
	})

	select {
	case <-oh.Done():
	default:
		t.Fatal("superseded handle not finished")
	}
	if oh.State() != StateCanceled || oh.TaskID() != "older" {
		t.Errorf("older handle: state=%s task=%q", oh.State(), oh.TaskID())
	}
	if tracker.Current() != nh || nh.State() != StatePolling {
		t.Errorf("current = %v, newer state = %s", tracker.Current(), nh.State())
	}
	for newer.count() < 2 {
		time.Sleep(time.Millisecond)
	}
	if older.count() != 0 || fired.Load() != 0 {
		t.Errorf("superseded job polled %d times, %d callbacks", older.count(), fired.Load())
	}
	nh.Stop()
	<-nh.Done()
}

func TestStopInvalidatesReservation(t *testing.T) {
	f := &scriptedFetcher{steps: []step{pending()}}
	tracker := NewTracker(newTestPoller(f, 0))

	tk := tracker.Reserve()
	tracker.Stop()
	h := tracker.StartReserved(context.Background(), tk, "t1", nil, Callbacks{})
	if h.State() != StateCanceled {
		t.Errorf("state = %s, want canceled", h.State())
	}
	if _, err := h.Wait(context.Background()); errors.ClassOf(err) != errors.ClassCanceled {
		t.Errorf("Wait err = %v", err)
	}

	tk = tracker.Reserve()
	tracker.Start(context.Background(), "t2", Callbacks{}).Stop()
	if tracker.Holds(tk) {
		t.Error("Start did not invalidate the outstanding reservation")
	}
}

func TestProgressStopsWithHandle(t *testing.T) {
	f := &scriptedFetcher{steps: []step{pending()}}
	tracker := NewTracker(newTestPoller(f, 0))

	var updates atomic.Int32
	h := tracker.Start(context.Background(), "t1", Callbacks{
		OnProgress: func(Update) {
			updates.Add(1)
			tracker.Stop()
		},
	})
	<-h.Done()
	n := f.count()
	time.Sleep(5 * testInterval)
	if updates.Load() != 1 {
		t.Errorf("progress updates = %d, want 1", updates.Load())
	}
	if f.count() != n {
		t.Errorf("polling continued after Stop: %d -> %d", n, f.count())
	}
}
