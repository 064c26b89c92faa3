// Package api is a typed client for the transcription service.
//
// Every call goes through httpclient, so requests carry an X-Request-ID, a
// scribe User-Agent and, when a TokenSource yields one, a bearer token.
// Failures come back as *errors.AppError values whose Message is the text the
// server sent, or a fixed per-operation fallback.
//
//	c, err := api.New(httpclient.Config{BaseURL: "http://localhost:8000/api"})
//	sub, err := c.Transcribe(ctx, req, nil)
//	job, err := c.Status(ctx, sub.TaskID)
package api
