// Package logging assembles structured slog loggers and formatting helpers used
// across highlighter.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so clip code can automatically
// tag log lines with the clip path and the invocation's correlation ID. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
