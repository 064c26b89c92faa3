// Package consumer runs the actions that use a finished transcript:
// summarizing it, drafting a structured record from it and saving that draft.
//
// Each action is a provider.RequestResponse with input validation, tracing and
// logging, plus metrics when configured. A double click that issues the same
// action with the same input twice results in one request.
package consumer
