package errors

import (
	"context"
	stderrors "errors"
	"net"
)

// Class groups errors by how a caller should react to them.
type Class int

const (
	ClassUnknown Class = iota
	// ClassValidation is a local precondition failure. Nothing was sent.
	ClassValidation
	// ClassTransport is a request that did not get a response.
	ClassTransport
	// ClassServer is a non-success response from the API.
	ClassServer
	// ClassJob is a job that failed or was abandoned after submission.
	ClassJob
	// ClassCanceled is a caller-initiated cancellation.
	ClassCanceled
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassTransport:
		return "transport"
	case ClassServer:
		return "server"
	case ClassJob:
		return "job"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

var codeClasses = map[ErrorCode]Class{
	ErrCodeInvalidInput:       ClassValidation,
	ErrCodeMissingField:       ClassValidation,
	ErrCodeInvalidFormat:      ClassValidation,
	ErrCodeFileTooLarge:       ClassValidation,
	ErrCodeNoSession:          ClassValidation,
	ErrCodeTokenExpired:       ClassValidation,
	ErrCodeServiceUnavailable: ClassTransport,
	ErrCodeConnectionFailed:   ClassTransport,
	ErrCodeTimeout:            ClassTransport,
	ErrCodeRateLimited:        ClassTransport,
	ErrCodeUnauthorized:       ClassServer,
	ErrCodeForbidden:          ClassServer,
	ErrCodeInvalidToken:       ClassServer,
	ErrCodeNotFound:           ClassServer,
	ErrCodeServerError:        ClassServer,
	ErrCodeSubmissionFailed:   ClassServer,
	ErrCodeJobFailed:          ClassJob,
	ErrCodePollTimeout:        ClassJob,
}

// ClassOf maps err onto the error taxonomy. Cancellation wins over any
// wrapping AppError.
func ClassOf(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	if stderrors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if appErr, ok := AsAppError(err); ok {
		if c, known := codeClasses[appErr.Code]; known {
			return c
		}
		return ClassUnknown
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return ClassTransport
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return ClassTransport
	}
	return ClassUnknown
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	if stderrors.Is(err, context.Canceled) {
		return "Canceled."
	}
	return err.Error()
}
