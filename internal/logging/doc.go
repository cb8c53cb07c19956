// Package logging assembles structured slog loggers shared by the geotag CLI
// and engine components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and re-exports slog attribute constructors so callers emit fields
// with consistent keys. A no-op logger is available for tests and wiring code
// that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// logs with the same shape.
package logging
