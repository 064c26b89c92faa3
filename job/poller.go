package job

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/transcription"
)

// StatusFetcher reads a job snapshot. *api.Client implements it.
type StatusFetcher interface {
	Status(ctx context.Context, taskID string) (*transcription.Job, error)
}

// Update reports a pending poll response.
type Update struct {
	TaskID  string
	Status  transcription.Status
	Phase   Phase
	Polls   int
	Elapsed time.Duration
}

// Poller queries the status endpoint on a fixed interval until the job
// reaches a terminal status.
type Poller struct {
	fetcher StatusFetcher
	cfg     PollConfig
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewPoller returns a Poller using cfg, with zero fields defaulted.
func NewPoller(f StatusFetcher, cfg PollConfig, opts ...Option) *Poller {
	cfg.ApplyDefaults()
	o := buildOptions("job.poller", opts)
	return &Poller{fetcher: f, cfg: cfg, log: o.log, metrics: o.metrics}
}

// Config returns the effective configuration.
func (p *Poller) Config() PollConfig { return p.cfg }

// Poll waits for taskID to finish. onUpdate, if set, is called for every
// pending response. The first request is sent one interval after the call.
func (p *Poller) Poll(ctx context.Context, taskID string, onUpdate func(Update)) (*transcription.Result, error) {
	prog := NewProgress(p.cfg.ProgressAfter)
	prog.Submitted()
	return p.PollWithProgress(ctx, taskID, prog, onUpdate)
}

// PollWithProgress is Poll continuing an existing Progress.
func (p *Poller) PollWithProgress(ctx context.Context, taskID string, prog *Progress, onUpdate func(Update)) (result *transcription.Result, err error) {
	if prog == nil {
		prog = NewProgress(p.cfg.ProgressAfter)
		prog.Submitted()
	}
	ctx = logger.ContextWithTaskID(ctx, taskID)
	ctx, span := observability.StartSpan(ctx, observability.SpanPoll)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, taskID)

	log := p.log.WithContext(ctx)
	start := time.Now()
	polls := 0
	p.metrics.JobStarted(ctx)
	defer func() {
		outcome := outcomeOf(err)
		observability.SetSpanAttribute(ctx, observability.AttrPolls, polls)
		observability.SetSpanAttribute(ctx, observability.AttrStatus, outcome)
		observability.SetSpanError(ctx, err)
		p.metrics.JobFinished(ctx, outcome, time.Since(start))
		fields := logger.MergeWithDuration(logger.Fields("polls", polls, "outcome", outcome), time.Since(start))
		if err != nil && outcome != "canceled" {
			log.Warn("poll finished", logger.MergeWithError(fields, err))
		} else {
			log.Info("poll finished", fields)
		}
	}()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	var deadline <-chan time.Time
	if p.cfg.MaxWait > 0 {
		timer := time.NewTimer(p.cfg.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	log.Debug("polling started", logger.Fields("interval_ms", p.cfg.Interval.Milliseconds()))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, errors.PollTimeout(taskID, time.Since(start))
		case <-ticker.C:
		}
		// Both channels may be ready at once; teardown wins over a tick.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		polls++
		job, err := p.fetcher.Status(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !transient(err) {
				p.metrics.RecordPoll(ctx, "failed")
				return nil, err
			}
			p.metrics.RecordPoll(ctx, "transient")
			log.Warn("status request failed, will retry", logger.MergeWithError(logger.Fields(logger.FieldAttempt, polls), err))
			continue
		}
		p.metrics.RecordPoll(ctx, string(job.Status))

		switch {
		case job.Status == transcription.StatusCompleted:
			res := job.Result
			if res == nil {
				res = &transcription.Result{TaskID: taskID, Status: job.Status, CreatedAt: job.CreatedAt, Type: job.Type}
			}
			return res, nil
		case job.Status == transcription.StatusError:
			return nil, errors.JobFailed(taskID, job.Error)
		case job.Status.IsPending():
			phase := prog.Observe(job.Status)
			log.Debug("job pending", logger.Fields(logger.FieldStatus, string(job.Status), logger.FieldPhase, phase.String()))
			if onUpdate != nil {
				onUpdate(Update{TaskID: taskID, Status: job.Status, Phase: phase, Polls: polls, Elapsed: prog.Elapsed()})
			}
		default:
			log.Debug("job not visible yet", logger.Fields(logger.FieldStatus, string(job.Status)))
		}
	}
}

// transient reports failures worth another poll: no response, throttling,
// a 5xx, or a 404 for a job the server has not registered yet.
func transient(err error) bool {
	if errors.ClassOf(err) == errors.ClassTransport {
		return true
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	return appErr.HTTPStatus >= http.StatusInternalServerError || appErr.HTTPStatus == http.StatusNotFound
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.ClassOf(err) == errors.ClassCanceled:
		return "canceled"
	case errors.HasCode(err, errors.ErrCodeJobFailed):
		return "error"
	case errors.HasCode(err, errors.ErrCodePollTimeout):
		return "timeout"
	default:
		return "failed"
	}
}
