package job

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/transcription"
)

// State is the lifecycle of a Handle.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateSucceeded
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "idle"
	}
}

// Terminal reports whether s is final.
func (s State) Terminal() bool { return s >= StateSucceeded }

// Callbacks receive the outcome of a tracked job. OnComplete and OnError
// fire at most once per Handle and never after Stop has returned.
// OnProgress is not serialized with Stop: an update already being
// delivered when Stop is called may still arrive, but no update is
// delivered for a poll response received after Stop.
type Callbacks struct {
	OnProgress func(Update)
	OnComplete func(*transcription.Result)
	OnError    func(error)
}

// Handle controls one polling loop.
type Handle struct {
	taskID string
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	result *transcription.Result
	err    error
}

func newHandle(taskID string) *Handle {
	return &Handle{taskID: taskID, done: make(chan struct{})}
}

// CompletedHandle returns a finished Handle holding r, for submissions the
// service completed without queueing.
func CompletedHandle(r *transcription.Result) *Handle {
	var id string
	if r != nil {
		id = r.TaskID
	}
	h := newHandle(id)
	h.state.Store(int32(StateSucceeded))
	h.result = r
	close(h.done)
	return h
}

// TaskID returns the job being polled.
func (h *Handle) TaskID() string { return h.taskID }

// State returns the current state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Stop cancels the loop. It is safe to call repeatedly and after the job
// has finished.
func (h *Handle) Stop() {
	h.state.CompareAndSwap(int32(StatePolling), int32(StateCanceled))
	h.state.CompareAndSwap(int32(StateIdle), int32(StateCanceled))
	if h.cancel != nil {
		h.cancel()
	}
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the loop exits or ctx ends. A stopped handle returns
// context.Canceled.
func (h *Handle) Wait(ctx context.Context) (*transcription.Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Handle) finish(to State) bool {
	return h.state.CompareAndSwap(int32(StatePolling), int32(to))
}

// CanceledHandle returns a finished, canceled Handle for a job that was
// superseded before its loop started.
func CanceledHandle(taskID string) *Handle {
	h := newHandle(taskID)
	h.state.Store(int32(StateCanceled))
	h.err = context.Canceled
	close(h.done)
	return h
}

// Ticket reserves the tracker for a submission whose task id is not known
// yet. Any later Reserve, Start or Stop invalidates it.
type Ticket struct {
	gen uint64
}

// Tracker runs at most one polling loop at a time.
type Tracker struct {
	poller *Poller
	log    *logger.Logger

	mu      sync.Mutex
	gen     uint64
	current *Handle
}

// NewTracker returns a Tracker driving p.
func NewTracker(p *Poller, opts ...Option) *Tracker {
	o := buildOptions("job.tracker", opts)
	return &Tracker{poller: p, log: o.log}
}

// Start stops any active loop and begins polling taskID.
func (t *Tracker) Start(ctx context.Context, taskID string, cb Callbacks) *Handle {
	return t.StartWithProgress(ctx, taskID, nil, cb)
}

// StartWithProgress is Start continuing the Progress of the submission.
func (t *Tracker) StartWithProgress(ctx context.Context, taskID string, prog *Progress, cb Callbacks) *Handle {
	return t.start(ctx, nil, taskID, prog, cb)
}

// Reserve stops any active loop and returns a Ticket for a submission about
// to be uploaded.
func (t *Tracker) Reserve() Ticket {
	t.mu.Lock()
	t.gen++
	tk := Ticket{gen: t.gen}
	prev := t.current
	t.current = nil
	t.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
	return tk
}

// Holds reports whether tk is still the latest reservation.
func (t *Tracker) Holds(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk.gen == t.gen
}

// StartReserved begins polling taskID if tk is still the latest
// reservation. Otherwise the job was superseded: nothing is polled, no
// callback fires and the returned Handle is already canceled.
func (t *Tracker) StartReserved(ctx context.Context, tk Ticket, taskID string, prog *Progress, cb Callbacks) *Handle {
	return t.start(ctx, &tk, taskID, prog, cb)
}

func (t *Tracker) start(ctx context.Context, tk *Ticket, taskID string, prog *Progress, cb Callbacks) *Handle {
	h := newHandle(taskID)
	pctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.state.Store(int32(StatePolling))

	t.mu.Lock()
	if tk != nil && tk.gen != t.gen {
		t.mu.Unlock()
		cancel()
		t.log.Debug("discarded superseded submission", logger.Fields(logger.FieldTaskID, taskID))
		return CanceledHandle(taskID)
	}
	if tk == nil {
		t.gen++
	}
	prev := t.current
	t.current = h
	t.mu.Unlock()
	if prev != nil {
		prev.Stop()
		t.log.Debug("replaced active poll", logger.Fields("previous", prev.taskID, logger.FieldTaskID, taskID))
	}

	go t.run(pctx, h, prog, cb)
	return h
}

func (t *Tracker) run(ctx context.Context, h *Handle, prog *Progress, cb Callbacks) {
	defer h.cancel()

	onUpdate := func(u Update) {
		if cb.OnProgress != nil && h.State() == StatePolling {
			cb.OnProgress(u)
		}
	}
	result, err := t.poller.PollWithProgress(ctx, h.taskID, prog, onUpdate)

	switch {
	case err == nil && h.finish(StateSucceeded):
		h.result = result
		close(h.done)
		if cb.OnComplete != nil {
			cb.OnComplete(result)
		}
	case err != nil && ctx.Err() == nil && h.finish(StateFailed):
		h.err = err
		close(h.done)
		if cb.OnError != nil {
			cb.OnError(err)
		}
	default:
		// Stopped, or the parent context ended.
		h.state.CompareAndSwap(int32(StatePolling), int32(StateCanceled))
		if err == nil {
			err = context.Canceled
		}
		h.err = err
		close(h.done)
	}
	t.release(h)
}

func (t *Tracker) release(h *Handle) {
	t.mu.Lock()
	if t.current == h {
		t.current = nil
	}
	t.mu.Unlock()
}

// Current returns the active handle, or nil.
func (t *Tracker) Current() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Stop cancels the active loop, if any, and invalidates outstanding
// tickets.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.gen++
	h := t.current
	t.current = nil
	t.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}
