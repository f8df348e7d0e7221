// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Prober: runs a configured ffprobe binary and returns a parsed Result
//   - Result: streams and container metadata
//   - Stream: individual stream properties, dispositions, and tags
//
// Helper methods on Result provide stream filtering and duration parsing.
// Failures are tagged with the services error markers so callers can tell a
// missing binary from an unreadable file.
package ffprobe
