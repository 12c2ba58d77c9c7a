// Package logging assembles structured slog loggers and formatting helpers used
// across shadowkit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so sweep code can tag log lines
// with the project, run ID, and item position. The package also provides a
// no-op logger for tests and a progress sampler that keeps per-transcode
// progress from flooding the log.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
