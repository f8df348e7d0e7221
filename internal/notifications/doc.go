// Package notifications delivers export results via ntfy.
//
// NewService returns an ntfy-backed Service when a topic URL is configured
// and a no-op otherwise. Forward subscribes a Service to a session machine so
// finished and failed exports are announced without the workflow knowing
// about HTTP.
package notifications
