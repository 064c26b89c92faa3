// Package logger provides structured logging on top of zerolog.
//
// A process configures the global logger once with Init and every package
// asks for a component-scoped logger by name:
//
//	logger.Init(logger.Config{Level: "debug", Format: "json"})
//	log := logger.Get("job.poller")
//	log.Info("poll started", logger.Fields(logger.FieldTaskID, id))
//
// Identifiers stored in a context with ContextWithRequestID and
// ContextWithTaskID are attached by WithContext.
package logger
