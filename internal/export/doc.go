// Package export owns the single in-flight audio extraction.
//
// Controller validates a source video, discovers its audio tracks, invokes a
// transcode Engine, samples the engine's fractional progress on a ticker, and
// resolves each job to an output path or one of the errors in errors.go. At
// most one job is active at a time; StartPolicy decides whether a second
// Export is rejected or supersedes the first.
//
// The package keeps no state across jobs. Engines and track loaders sit
// behind interfaces so tests can drive the controller with fakes.
package export
