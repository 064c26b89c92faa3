package job

import (
	"sync"
	"time"

	"github.com/kbukum/scribekit/transcription"
)

// Phase is a coarse, client-side progress indicator. It is derived from
// elapsed time and pending statuses and never decides job completion.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseQueued
	PhaseProcessing
)

func (p Phase) String() string {
	switch p {
	case PhaseUploading:
		return "uploading"
	case PhaseQueued:
		return "queued"
	case PhaseProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Progress tracks the phase of one submission. Phases only move forward.
type Progress struct {
	mu    sync.Mutex
	phase Phase
	start time.Time
	after time.Duration
	sent  int64
	now   func() time.Time
}

// NewProgress returns an idle tracker that reports PhaseQueued once after
// has elapsed since Begin.
func NewProgress(after time.Duration) *Progress {
	if after <= 0 {
		after = DefaultProgressAfter
	}
	return &Progress{after: after, now: time.Now}
}

// Begin marks the start of an upload.
func (p *Progress) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		p.start = p.now()
	}
	p.advance(PhaseUploading)
}

// Sent records the cumulative number of uploaded bytes.
func (p *Progress) Sent(n int64) {
	p.mu.Lock()
	if n > p.sent {
		p.sent = n
	}
	p.mu.Unlock()
}

// Submitted marks the upload as accepted by the server.
func (p *Progress) Submitted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		p.start = p.now()
	}
	p.advance(PhaseQueued)
}

// Observe folds a pending job status into the phase and returns it.
func (p *Progress) Observe(status transcription.Status) Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch status {
	case transcription.StatusQueued:
		p.advance(PhaseQueued)
	case transcription.StatusProcessing:
		p.advance(PhaseProcessing)
	}
	return p.current()
}

// Phase returns the current phase.
func (p *Progress) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current()
}

// Elapsed is the time since Begin or Submitted.
func (p *Progress) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		return 0
	}
	return p.now().Sub(p.start)
}

// BytesSent returns the uploaded byte count.
func (p *Progress) BytesSent() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

func (p *Progress) current() Phase {
	if !p.start.IsZero() && p.now().Sub(p.start) > p.after {
		p.advance(PhaseQueued)
	}
	return p.phase
}

func (p *Progress) advance(to Phase) {
	if to > p.phase {
		p.phase = to
	}
}
