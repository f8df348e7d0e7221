package export

import (
	"errors"

	"golang.org/x/text/language"

	"audex/internal/l10n"
)

// Message renders err as the human-readable text shown to users.
func Message(err error, tag language.Tag) string {
	if err == nil {
		return ""
	}
	var failure *ExportFailedError
	switch {
	case errors.Is(err, ErrNoAudioTrack):
		return l10n.Text(tag, l10n.NoAudioTrack)
	case errors.Is(err, ErrUnsupportedFormat):
		return l10n.Text(tag, l10n.UnsupportedFormat)
	case errors.Is(err, ErrInsufficientSpace):
		return l10n.Text(tag, l10n.InsufficientSpace)
	case errors.Is(err, ErrPermissionDenied):
		return l10n.Text(tag, l10n.PermissionDenied)
	case errors.Is(err, ErrJobAlreadyActive):
		return l10n.Text(tag, l10n.JobAlreadyActive)
	case errors.As(err, &failure):
		return l10n.Text(tag, l10n.ExportFailed, failure.Reason)
	default:
		return l10n.Text(tag, l10n.Unexpected, err.Error())
	}
}
