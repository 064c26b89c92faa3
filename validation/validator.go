package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"

	"github.com/kbukum/scribekit/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError describing every collected error, or nil.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": v.errors}
	return appErr
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks that a string has at most maxLen runes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len([]rune(value)) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// MinLength checks that a string has at least minLen runes.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	if len([]rune(value)) < minLen {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", minLen))
	}
	return v
}

// Email checks a non-empty value parses as a bare address.
func (v *Validator) Email(field, value string) *Validator {
	if value == "" {
		return v
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.AddError(field, "must be a valid email address")
	}
	return v
}

// URL checks a non-empty value is an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	if value == "" {
		return v
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.AddError(field, "must be a valid URL")
	}
	return v
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// TaskID checks a non-empty value is usable as a task id.
func (v *Validator) TaskID(field, value string) *Validator {
	if value != "" && !IsTaskID(value) {
		v.AddError(field, "must be a valid task id")
	}
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field.
func Required(field, value string) error {
	return New().Required(field, value).Validate()
}

// IsTaskID reports whether s can be placed in a URL path segment as a task
// id: non-empty, at most 128 bytes of letters, digits, '-' and '_'.
func IsTaskID(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
