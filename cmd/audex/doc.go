// Package main hosts the audex CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds a logger, and
// hands files to the workflow manager. extract renders the session state as a
// progress bar on terminals and as plain state lines elsewhere; formats and
// check print tables; config scaffolds and prints configuration.
package main
