package scribe

import (
	"context"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// MsgRecordUnavailable is shown when a stored transcription cannot be
// loaded.
const MsgRecordUnavailable = "Unable to load this record."

// Transcribe uploads req and blocks until the job finishes. A result the
// service returns synchronously is returned without polling. Concurrent
// calls poll independently; use StartJob for the single-active-job
// behavior.
func (c *Client) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	return c.TranscribeWithProgress(ctx, req, nil, nil)
}

// TranscribeWithProgress is Transcribe reporting upload and poll progress.
// prog may be nil.
func (c *Client) TranscribeWithProgress(ctx context.Context, req transcription.Request, prog *job.Progress, onUpdate func(job.Update)) (*transcription.Result, error) {
	if prog == nil {
		prog = job.NewProgress(c.cfg.Poll.ProgressAfter)
	}
	sub, err := c.submitter.SubmitWithProgress(ctx, req, prog)
	if err != nil {
		return nil, err
	}
	if !sub.IsQueued() {
		return syncResult(sub)
	}
	return c.poller.PollWithProgress(ctx, sub.TaskID, prog, onUpdate)
}

// StartJob stops any job started earlier, uploads req and tracks the new
// job in the background. Callbacks fire for the new job only. A synchronous
// completion calls OnComplete before StartJob returns and yields a finished
// Handle. When a later StartJob, Resume or Cancel happens during the upload,
// the submission is discarded: no callback fires and the Handle is
// canceled.
func (c *Client) StartJob(ctx context.Context, req transcription.Request, cb job.Callbacks) (*job.Handle, error) {
	ticket := c.tracker.Reserve()

	prog := job.NewProgress(c.cfg.Poll.ProgressAfter)
	sub, err := c.submitter.SubmitWithProgress(ctx, req, prog)
	if err != nil {
		return nil, err
	}
	if !sub.IsQueued() {
		result, err := syncResult(sub)
		if err != nil {
			return nil, err
		}
		if !c.tracker.Holds(ticket) {
			return job.CanceledHandle(result.TaskID), nil
		}
		if cb.OnComplete != nil {
			cb.OnComplete(result)
		}
		return job.CompletedHandle(result), nil
	}
	return c.tracker.StartReserved(ctx, ticket, sub.TaskID, prog, cb), nil
}

// Resume tracks a job submitted earlier, replacing any active one.
func (c *Client) Resume(ctx context.Context, taskID string, cb job.Callbacks) (*job.Handle, error) {
	if err := validation.New().Required("task_id", taskID).TaskID("task_id", taskID).Validate(); err != nil {
		return nil, err
	}
	return c.tracker.Start(ctx, taskID, cb), nil
}

// Cancel stops the job tracked by StartJob or Resume, if any.
func (c *Client) Cancel() { c.tracker.Stop() }

// Status fetches one snapshot of a job without polling.
func (c *Client) Status(ctx context.Context, taskID string) (*transcription.Job, error) {
	return c.api.Status(ctx, taskID)
}

// LoadResult returns the result of a finished job, as when reopening an
// entry from History. Unknown ids yield NOT_FOUND, failed jobs JOB_FAILED
// and pending jobs a validation error.
func (c *Client) LoadResult(ctx context.Context, taskID string) (*transcription.Result, error) {
	if err := validation.New().Required("task_id", taskID).Validate(); err != nil {
		return nil, err
	}
	j, err := c.api.Status(ctx, taskID)
	if err != nil {
		return nil, err
	}
	switch j.Status {
	case transcription.StatusCompleted:
		if j.Result == nil {
			return nil, errors.ServerError(0, MsgRecordUnavailable)
		}
		return j.Result, nil
	case transcription.StatusError:
		return nil, errors.JobFailed(taskID, j.Error)
	case transcription.StatusNotFound:
		e := errors.NotFound("transcription", taskID)
		e.Message = MsgRecordUnavailable
		return nil, e
	}
	return nil, errors.InvalidInput("task_id", "transcription is still "+string(j.Status))
}

// History lists past transcriptions.
func (c *Client) History(ctx context.Context) ([]transcription.HistoryItem, error) {
	return c.api.History(ctx)
}

// Records lists the saved records of the logged-in user.
func (c *Client) Records(ctx context.Context) ([]transcription.Record, error) {
	return c.api.Records(ctx)
}

func syncResult(sub *transcription.Submission) (*transcription.Result, error) {
	if sub.Result == nil {
		return nil, errors.SubmissionFailed(0, api.MsgTranscriptionFailed)
	}
	return sub.Result, nil
}
