package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// UploadProgress receives the number of file bytes sent so far.
type UploadProgress func(sent int64)

// Transcribe uploads req.File to the transcribe endpoint. A synchronous
// completion is returned in Submission.Result; otherwise Submission.TaskID
// identifies the queued job.
func (c *Client) Transcribe(ctx context.Context, req transcription.Request, progress UploadProgress) (*transcription.Submission, error) {
	req = req.WithDefaults()
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	body := (&httpclient.MultipartBody{Progress: progress}).
		AddField("language", string(req.Language)).
		AddField("transcription_type", string(req.ContentType)).
		AddField("correct", strconv.FormatBool(req.Correct)).
		AddFile("file", req.FileName, transcription.ContentTypeFor(req.FileName), req.File)

	raw, err := httpclient.Post[json.RawMessage](ctx, c.http, "transcribe", body)
	if err != nil {
		return nil, mapError(err, MsgTranscriptionFailed, true)
	}
	return decodeSubmission(raw)
}

func decodeSubmission(raw json.RawMessage) (*transcription.Submission, error) {
	var sub transcription.Submission
	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, errors.SubmissionFailed(0, MsgTranscriptionFailed).WithCause(err)
	}
	_ = json.Unmarshal(raw, &envelope)

	switch {
	case sub.Status == transcription.StatusCompleted:
		var result transcription.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errors.SubmissionFailed(0, MsgTranscriptionFailed).WithCause(err)
		}
		sub.Result = &result
		return &sub, nil
	case sub.Status == transcription.StatusError:
		return nil, errors.JobFailed(sub.TaskID, envelope.Error)
	case envelope.Success != nil && !*envelope.Success:
		msg := envelope.Error
		if msg == "" {
			msg = MsgTranscriptionFailed
		}
		return nil, errors.SubmissionFailed(0, msg)
	case sub.TaskID == "":
		return nil, errors.SubmissionFailed(0, MsgTranscriptionFailed).WithDetail("reason", "missing task_id")
	}
	if sub.Status == "" {
		sub.Status = transcription.StatusQueued
	}
	return &sub, nil
}

// Status fetches a snapshot of the job. Unknown task ids yield a Job with
// StatusNotFound rather than an error.
func (c *Client) Status(ctx context.Context, taskID string) (*transcription.Job, error) {
	if err := validation.New().TaskID("task_id", taskID).Validate(); err != nil {
		return nil, err
	}
	raw, err := httpclient.Get[json.RawMessage](ctx, c.http, taskPath("status", taskID))
	if err != nil {
		return nil, mapError(err, MsgStatusFailed, false)
	}
	return decodeJob(taskID, raw)
}

func decodeJob(taskID string, raw json.RawMessage) (*transcription.Job, error) {
	var job transcription.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, errors.ServerError(0, MsgStatusFailed).WithCause(err)
	}
	if job.TaskID == "" {
		job.TaskID = taskID
	}
	if job.Status == transcription.StatusCompleted {
		var result transcription.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errors.ServerError(0, MsgStatusFailed).WithCause(err)
		}
		if result.TaskID == "" {
			result.TaskID = job.TaskID
		}
		job.Result = &result
	}
	return &job, nil
}

// Summarize asks the service for a summary of text.
func (c *Client) Summarize(ctx context.Context, text string, kind transcription.SummaryKind) (string, error) {
	if kind == "" {
		kind = transcription.SummaryShort
	}
	form := url.Values{
		"text":         {text},
		"summary_type": {string(kind)},
	}
	resp, err := httpclient.Post[struct {
		Success *bool  `json:"success"`
		Summary string `json:"summary"`
		Error   string `json:"error"`
	}](ctx, c.http, "summarize", form)
	if err != nil {
		return "", mapError(err, MsgSummaryFailed, false)
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = MsgSummaryFailed
		}
		return "", errors.ServerError(0, msg)
	}
	return resp.Summary, nil
}
