// Package services defines shared utilities consumed by the export pipeline
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp export job IDs and target formats for logging.
//   - Structured error markers plus the Wrap helper so failures carry the phase
//     and operation that produced them.
//   - Classify, which buckets failures for the event_type log field.
package services
