package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport and availability errors.
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// Client-side validation errors.
const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeFileTooLarge rejects an upload above the configured ceiling.
	ErrCodeFileTooLarge ErrorCode = "FILE_TOO_LARGE"
)

// Authentication errors.
const (
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeNoSession means an operation needs a stored credential and none exists.
	ErrCodeNoSession ErrorCode = "NO_SESSION"
)

// Server-reported errors.
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeServerError      ErrorCode = "SERVER_ERROR"
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
)

// Remote job errors.
const (
	// ErrCodeJobFailed is a job that reached the error status on the server.
	ErrCodeJobFailed ErrorCode = "JOB_FAILED"
	// ErrCodePollTimeout is a job still pending when the client stopped waiting.
	ErrCodePollTimeout ErrorCode = "POLL_TIMEOUT"
)

// ErrCodeInternal indicates a bug or an unexpected local failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode reports whether an operation failing with code may succeed
// when repeated unchanged.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
