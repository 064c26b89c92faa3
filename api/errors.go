package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/httpclient"
)

// Fallback messages used when the server sends none.
const (
	MsgTranscriptionFailed = "Transcription failed."
	MsgStatusFailed        = "Unable to check the transcription status."
	MsgSummaryFailed       = "Summary generation failed."
	MsgDraftFailed         = "Draft generation failed."
	MsgSaveFailed          = "Saving the record failed."
	MsgLoadFailed          = "Unable to load data."
	MsgLoginFailed         = "Login failed."
	MsgSignupFailed        = "Sign up failed."
)

const serviceName = "transcription service"

// mapError turns an httpclient error into an AppError. fallback is used when
// the response carries no message. Cancellation is returned unchanged.
func mapError(err error, fallback string, submit bool) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	hErr, ok := httpclient.AsError(err)
	if !ok {
		return errors.Internal(err)
	}

	switch hErr.Code {
	case httpclient.ErrCodeTimeout:
		return errors.Timeout(serviceName).WithCause(err)
	case httpclient.ErrCodeConnection:
		return errors.ConnectionFailed(serviceName).WithCause(err)
	case httpclient.ErrCodeCircuitOpen:
		return errors.ServiceUnavailable(serviceName).WithCause(err)
	case httpclient.ErrCodeRequest:
		return errors.Internal(err)
	}

	msg := ServerMessage(hErr.Body)
	switch {
	case hErr.StatusCode == http.StatusUnauthorized:
		return errors.Unauthorized(msg).WithCause(err)
	case hErr.StatusCode == http.StatusForbidden:
		return errors.Forbidden(msg).WithCause(err)
	case hErr.StatusCode == http.StatusTooManyRequests && msg == "":
		return errors.RateLimited().WithCause(err)
	}
	if msg == "" {
		msg = fallback
	}
	if submit {
		return errors.SubmissionFailed(hErr.StatusCode, msg).WithCause(err)
	}
	return errors.ServerError(hErr.StatusCode, msg).WithCause(err)
}

// ServerMessage extracts the error text from a JSON error body. It reads
// "detail" (a string or a list of objects with "msg"), then "message", then
// "error". It returns "" when none is present.
func ServerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := detailMessage(payload.Detail); msg != "" {
		return msg
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
