// Package ffmpeg implements export.Engine on top of the ffmpeg CLI.
//
// Each Begin call starts one ffmpeg process with "-progress pipe:1". The
// handle parses out_time_us from stdout against the probed duration to report
// a fraction, keeps the last error lines from stderr as the failure reason,
// and cancels by sending SIGINT, escalating to SIGKILL after the configured
// grace period.
package ffmpeg
