// Package logging assembles structured slog loggers and formatting helpers
// used across AIGCGuard services.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and standardizes the attribute keys detection and embedding code uses to
// tag log lines with fingerprint and detection identifiers. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
