package logger

import (
	"time"
)

// Standard field keys.
const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldTaskID    = "task_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldPhase     = "phase"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldAttempt   = "attempt"
	FieldEmail     = "email"
	FieldURL       = "url"
)

// Fields builds a field map from alternating key-value pairs. Non-string
// keys and a trailing odd value are dropped.
//
//	logger.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     errString(err),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields[FieldError] = errString(err)
	return fields
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
