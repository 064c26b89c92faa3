// Package validation checks request values before they leave the process.
//
// Struct validation uses go-playground/validator tags; the fluent Validator
// collects field errors for ad-hoc checks such as CLI flags. Both report a
// single *errors.AppError with the per-field messages in Details["fields"].
package validation
