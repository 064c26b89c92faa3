package scribe

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/storage"
	"github.com/kbukum/scribekit/transcription"
)

// OpenFile builds an upload request for location, a local path or an
// s3://bucket/key URL. Files over the upload ceiling are rejected from
// their size before anything is read. The caller closes the returned
// Closer after the upload.
func (c *Client) OpenFile(ctx context.Context, location string) (transcription.Request, io.Closer, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return transcription.Request{}, nil, errors.InvalidInput("file", err.Error())
	}
	store, key, err := storage.ForLocation(ctx, c.cfg.Storage, loc)
	if err != nil {
		return transcription.Request{}, nil, err
	}
	info, err := store.Stat(ctx, key)
	if err != nil {
		return transcription.Request{}, nil, fileError(location, err)
	}
	if limit := c.submitter.MaxSize(); info.Size > limit {
		return transcription.Request{}, nil, errors.FileTooLarge(info.Size, limit)
	}
	if !transcription.IsAudioFile(loc.Name()) {
		c.log.Warn("file extension is not a known audio type", logger.Fields("file", loc.Name()))
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		return transcription.Request{}, nil, fileError(location, err)
	}
	return transcription.Request{File: rc, FileName: loc.Name(), Size: info.Size}, rc, nil
}

func fileError(location string, err error) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound("file", location).WithCause(err)
	}
	return errors.Internal(err)
}
