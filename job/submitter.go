package job

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/kbukum/scribekit/api"
	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// Uploader sends one transcription upload. *api.Client implements it.
type Uploader interface {
	Transcribe(ctx context.Context, req transcription.Request, progress api.UploadProgress) (*transcription.Submission, error)
}

// Submitter validates an upload locally and sends it.
type Submitter struct {
	uploader Uploader
	maxSize  int64
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewSubmitter returns a Submitter enforcing cfg.MaxSize.
func NewSubmitter(u Uploader, cfg UploadConfig, opts ...Option) *Submitter {
	cfg.ApplyDefaults()
	o := buildOptions("job.submitter", opts)
	return &Submitter{uploader: u, maxSize: cfg.MaxSize, log: o.log, metrics: o.metrics}
}

// MaxSize returns the upload ceiling in bytes.
func (s *Submitter) MaxSize() int64 { return s.maxSize }

// Submit validates req and uploads it. Oversized or invalid requests are
// rejected without any network call.
func (s *Submitter) Submit(ctx context.Context, req transcription.Request) (*transcription.Submission, error) {
	return s.SubmitWithProgress(ctx, req, nil)
}

// SubmitWithProgress is Submit reporting upload phases to p, which may be nil.
func (s *Submitter) SubmitWithProgress(ctx context.Context, req transcription.Request, p *Progress) (*transcription.Submission, error) {
	req = req.WithDefaults()
	if req.Size <= 0 {
		req.Size = sizeOf(req.File)
	}
	if err := s.check(req); err != nil {
		s.metrics.RecordSubmission(ctx, "rejected")
		s.log.WithContext(ctx).Info("upload rejected", logger.Fields("file", req.FileName, "size", req.Size, "reason", errors.UserMessage(err)))
		return nil, err
	}
	// An unknown size is still bounded while streaming.
	req.File = &limitReader{r: req.File, remaining: s.maxSize, limit: s.maxSize}

	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrFileSize, req.Size)

	var onSent api.UploadProgress
	if p != nil {
		p.Begin()
		onSent = p.Sent
	}

	sub, err := s.uploader.Transcribe(ctx, req, onSent)
	if err != nil {
		if lr, ok := req.File.(*limitReader); ok && lr.exceeded.Load() {
			err = errors.FileTooLarge(lr.limit+1, lr.limit)
		}
		observability.SetSpanError(ctx, err)
		s.metrics.RecordSubmission(ctx, "failed")
		s.metrics.RecordError(ctx, errors.ClassOf(err).String(), "job.submitter")
		s.log.WithContext(ctx).Warn("upload failed", logger.MergeWithError(logger.Fields("file", req.FileName), err))
		return nil, err
	}

	status := string(sub.Status)
	if sub.IsQueued() {
		status = string(transcription.StatusQueued)
		if p != nil {
			p.Submitted()
		}
	}
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, sub.TaskID)
	observability.SetSpanAttribute(ctx, observability.AttrStatus, status)
	s.metrics.RecordSubmission(ctx, status)
	s.log.WithContext(ctx).Info("upload accepted", logger.Fields(logger.FieldTaskID, sub.TaskID, logger.FieldStatus, status, "file", req.FileName))
	return sub, nil
}

func (s *Submitter) check(req transcription.Request) error {
	if err := validation.Validate(req); err != nil {
		return err
	}
	if req.Size > s.maxSize {
		return errors.FileTooLarge(req.Size, s.maxSize)
	}
	return nil
}

// sizeOf returns the length of r when it can be learned without reading,
// or 0.
func sizeOf(r io.Reader) int64 {
	switch v := r.(type) {
	case *bytes.Reader:
		return int64(v.Len())
	case *bytes.Buffer:
		return int64(v.Len())
	case *strings.Reader:
		return int64(v.Len())
	case interface{ Stat() (fs.FileInfo, error) }:
		if fi, err := v.Stat(); err == nil && fi.Mode().IsRegular() {
			return fi.Size()
		}
	}
	return 0
}

type limitReader struct {
	r         io.Reader
	remaining int64
	limit     int64
	exceeded  atomic.Bool
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		l.exceeded.Store(true)
		return 0, errors.FileTooLarge(l.limit+1, l.limit)
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded.Store(true)
		return n, errors.FileTooLarge(l.limit+1, l.limit)
	}
	return n, err
}
