package preflight

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"audex/internal/services"
)

const mib = 1 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if err := EnsureWritable(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports whether the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s available", humanize.IBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %s", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// FreeBytes returns the space available to unprivileged users on the
// filesystem containing path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil //nolint:gosec
}

// EnsureWritable returns an error wrapping the underlying errno when path is
// not an accessible directory.
func EnsureWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrNotFound, "preflight", "stat", path, errors.New("does not exist"))
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "stat", path, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "preflight", "stat", path, errors.New("is not a directory"))
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "access", path, err)
	}
	return nil
}

// EnsureFreeSpace returns an error wrapping unix.ENOSPC when the filesystem
// holding dir has fewer than need bytes available.
func EnsureFreeSpace(dir string, need uint64) error {
	free, err := FreeBytes(dir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "statfs", dir, err)
	}
	if free < need {
		detail := fmt.Sprintf("%s available, need %s", humanize.IBytes(free), humanize.IBytes(need))
		return services.Wrap(services.ErrConfiguration, "preflight", "free space", detail, unix.ENOSPC)
	}
	return nil
}
