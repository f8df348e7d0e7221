// Package preflight provides readiness checks for the filesystem paths and
// external binaries audex depends on.
//
// These checks run in two contexts:
//   - The export controller calls EnsureWritable and EnsureFreeSpace before
//     starting the engine. Failures wrap the underlying errno (EACCES, ENOSPC)
//     so callers can classify them.
//   - The CLI "audex check" command uses RunAll and CheckSystemDeps to display
//     a readiness table.
package preflight
