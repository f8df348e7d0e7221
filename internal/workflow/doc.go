// Package workflow drives one source file through validation and export.
//
// The Manager owns a session.Machine and an export.Controller. ProcessFile
// and HandleDrop take a file from the presentation layer, hold the access
// token for picked files, and translate every controller outcome into a
// session transition with a localized message. Cancel, Reset, Dismiss and
// SaveAs are the remaining user actions. The Manager is the only component
// that raises session events, so the presentation layer renders from the
// machine and calls the Manager, never the controller directly.
package workflow
