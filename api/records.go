package api

import (
	"context"

	"github.com/kbukum/scribekit/httpclient"
	"github.com/kbukum/scribekit/transcription"
)

// DraftRecord asks the service to rewrite text as a structured record.
func (c *Client) DraftRecord(ctx context.Context, req transcription.DraftRequest) (*transcription.Draft, error) {
	draft, err := httpclient.Post[*transcription.Draft](ctx, c.http, "records/draft", req)
	if err != nil {
		return nil, mapError(err, MsgDraftFailed, false)
	}
	if draft == nil {
		draft = &transcription.Draft{}
	}
	return draft, nil
}

// SaveRecord persists a draft and returns the stored record.
func (c *Client) SaveRecord(ctx context.Context, req transcription.SaveRequest) (*transcription.Record, error) {
	rec, err := httpclient.Post[*transcription.Record](ctx, c.http, "records", req)
	if err != nil {
		return nil, mapError(err, MsgSaveFailed, false)
	}
	if rec == nil {
		rec = &transcription.Record{Category: req.Category, Title: req.Title, Content: req.Content, TaskID: req.TaskID}
	}
	return rec, nil
}

// History lists past transcriptions, newest first as the server orders them.
func (c *Client) History(ctx context.Context) ([]transcription.HistoryItem, error) {
	items, err := httpclient.Get[[]transcription.HistoryItem](ctx, c.http, "history")
	if err != nil {
		return nil, mapError(err, MsgLoadFailed, false)
	}
	return items, nil
}

// Records lists saved records.
func (c *Client) Records(ctx context.Context) ([]transcription.Record, error) {
	recs, err := httpclient.Get[[]transcription.Record](ctx, c.http, "records")
	if err != nil {
		return nil, mapError(err, MsgLoadFailed, false)
	}
	return recs, nil
}
