// Package logger provides structured logging for the application.
//
// It builds on the standard library log/slog package: a JSON handler with a
// configurable level, plus helpers that carry a request-scoped logger (with
// its trace_id attribute) through a context.Context.
package logger
