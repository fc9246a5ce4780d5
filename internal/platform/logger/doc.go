// Package logger configures the process-wide slog logger and carries
// request-scoped loggers through context.Context.
//
// Output is JSON on stdout. Components derive their own logger with a
// "component" attribute and prefer the context logger when one is present so
// that trace ids reach every log line of a request.
package logger
