package export

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var (
	// ErrUnsupportedFormat means the source is not a supported video type.
	ErrUnsupportedFormat = errors.New("unsupported video format")
	// ErrNoAudioTrack means the source has zero audio streams.
	ErrNoAudioTrack = errors.New("no audio track")
	// ErrExportFailed matches every *ExportFailedError.
	ErrExportFailed = errors.New("export failed")
	// ErrInsufficientSpace wraps ENOSPC reported by the filesystem.
	ErrInsufficientSpace = errors.New("insufficient disk space")
	// ErrPermissionDenied wraps EACCES or EPERM reported by the filesystem.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrJobAlreadyActive is returned when a second export starts under StartReject.
	ErrJobAlreadyActive = errors.New("export already active")
)

// Reasons carried by ExportFailedError for non-engine outcomes.
const (
	ReasonCancelled        = "cancelled"
	ReasonUnexpectedStatus = "unexpected status"
)

// ExportFailedError reports an engine failure, a cancellation, or an
// unexpected terminal status.
type ExportFailedError struct {
	Reason string
	Err    error
}

func (e *ExportFailedError) Error() string {
	if e.Reason == "" {
		return ErrExportFailed.Error()
	}
	return ErrExportFailed.Error() + ": " + e.Reason
}

func (e *ExportFailedError) Unwrap() error { return e.Err }

func (e *ExportFailedError) Is(target error) bool { return target == ErrExportFailed }

func failed(reason string, err error) error {
	return &ExportFailedError{Reason: reason, Err: err}
}

// IsCancelled reports whether err is the cancellation outcome of an export.
func IsCancelled(err error) bool {
	var failure *ExportFailedError
	return errors.As(err, &failure) && failure.Reason == ReasonCancelled
}

// classifyFS maps filesystem errnos onto the export sentinels. Errors that
// carry neither ENOSPC nor a permission errno are returned unchanged.
func classifyFS(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInsufficientSpace), errors.Is(err, ErrPermissionDenied):
		return err
	case errors.Is(err, unix.ENOSPC), errors.Is(err, unix.EDQUOT):
		return &fsError{sentinel: ErrInsufficientSpace, err: err}
	case errors.Is(err, os.ErrPermission), errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return &fsError{sentinel: ErrPermissionDenied, err: err}
	default:
		return err
	}
}

type fsError struct {
	sentinel error
	err      error
}

func (e *fsError) Error() string { return e.sentinel.Error() + ": " + e.err.Error() }

func (e *fsError) Unwrap() []error { return []error{e.sentinel, e.err} }
