// Package logging assembles structured slog loggers and formatting helpers used
// across mpkg.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so facade code can tag log lines with the
// media package identifier and the operation in progress. The package also
// provides a no-op logger for tests and for components constructed without one.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
