package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status returned by the remote API, zero for local errors.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so errors.Is(err, &AppError{Code: c})
// works as a code check.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// --- Transport ---

// ServiceUnavailable reports a remote service that refuses work, for example
// behind an open circuit breaker.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		Retryable: true, Details: map[string]any{"service": service},
	}
}

// ConnectionFailed reports a request that never reached the server.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please check your network connection.", service),
		Retryable: true, Details: map[string]any{"service": service},
	}
}

// Timeout reports a request that took longer than its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		Retryable: true, Details: map[string]any{"operation": operation},
	}
}

// RateLimited reports a request rejected by a rate limit.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// --- Validation ---

// FileTooLarge rejects a file before upload.
func FileTooLarge(size, limit int64) *AppError {
	return &AppError{
		Code:    ErrCodeFileTooLarge,
		Message: fmt.Sprintf("File size exceeds the %s limit.", FormatBytes(limit)),
		Details: map[string]any{"size": size, "limit": limit},
	}
}

// InvalidInput creates an error for an invalid argument.
func InvalidInput(field, reason string) *AppError {
	e := &AppError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason)}
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an error for a failed validation with a ready message.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates an error for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// InvalidFormat creates an error for a field with an unexpected format.
func InvalidFormat(field, expectedFormat string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat),
		Details: map[string]any{"field": field, "expected_format": expectedFormat},
	}
}

// --- Authentication ---

// Unauthorized reports a rejected credential.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{Code: ErrCodeUnauthorized, Message: reason, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden reports a credential without access to the resource.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return &AppError{Code: ErrCodeForbidden, Message: reason, HTTPStatus: http.StatusForbidden}
}

// TokenExpired reports a stored credential past its expiry.
func TokenExpired() *AppError {
	return &AppError{Code: ErrCodeTokenExpired, Message: "Your session has expired. Please log in again."}
}

// InvalidToken reports a token the server did not return in a usable form.
func InvalidToken() *AppError {
	return &AppError{Code: ErrCodeInvalidToken, Message: "Invalid authentication token. Please log in again."}
}

// NoSession reports an operation that needs a logged-in user.
func NoSession() *AppError {
	return &AppError{Code: ErrCodeNoSession, Message: "Not logged in."}
}

// --- Server ---

// NotFound reports a resource the server does not know.
func NotFound(resource, id string) *AppError {
	e := &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: map[string]any{"resource": resource},
	}
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// ServerError reports a non-success response. message is the text the server
// sent, already chosen over any fallback by the caller.
func ServerError(status int, message string) *AppError {
	return &AppError{
		Code: ErrCodeServerError, Message: message,
		HTTPStatus: status, Retryable: status >= http.StatusInternalServerError,
	}
}

// SubmissionFailed reports a rejected transcription upload.
func SubmissionFailed(status int, message string) *AppError {
	return &AppError{Code: ErrCodeSubmissionFailed, Message: message, HTTPStatus: status}
}

// --- Remote job ---

// DefaultJobFailureMessage is used when a failed job carries no message.
const DefaultJobFailureMessage = "An error occurred during transcription."

// JobFailed reports a job that ended in the error status.
func JobFailed(taskID, message string) *AppError {
	if message == "" {
		message = DefaultJobFailureMessage
	}
	return &AppError{
		Code: ErrCodeJobFailed, Message: message,
		Details: map[string]any{"task_id": taskID},
	}
}

// PollTimeout reports a job still pending after the client's wait ceiling.
func PollTimeout(taskID string, waited time.Duration) *AppError {
	return &AppError{
		Code:    ErrCodePollTimeout,
		Message: fmt.Sprintf("Transcription did not finish within %s.", waited.Round(time.Second)),
		Details: map[string]any{"task_id": taskID, "waited_ms": waited.Milliseconds()},
	}
}

// Internal wraps an unexpected local failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// FormatBytes renders n using binary units ("100MB").
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KB", "MB", "GB", "TB"}[exp]
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d%s", int64(value), suffix)
	}
	return fmt.Sprintf("%.1f%s", value, suffix)
}
