// Package session holds the observable application state of audex.
//
// A Machine moves through Idle, Validating, Processing, Done and Error in
// response to events raised by the workflow. Events that name a job are
// discarded with ErrStaleJob unless they match the job the machine is
// tracking, so a late callback from a cancelled export can never move the
// machine. Observers register a callback with Subscribe or receive a channel
// from Watch; Current polls.
package session
