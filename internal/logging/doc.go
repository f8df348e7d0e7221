// Package logging assembles structured slog loggers and formatting helpers used
// across audex.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so export code can tag log lines
// with job identifiers. The package also provides a no-op logger for tests and
// wiring code that cannot fail, plus a sampler that keeps progress logging to
// one line per bucket.
package logging
