package workflow

import (
	"errors"
	"fmt"

	"audex/internal/fileutil"
	"audex/internal/l10n"
	"audex/internal/logging"
	"audex/internal/session"
)

// Cancel stops the running export and returns the session to Idle at once.
// The export's own cancelled outcome arrives later and is discarded.
func (m *Manager) Cancel() {
	current := m.machine.Current()
	if current.Kind != session.KindProcessing && current.Kind != session.KindValidating {
		return
	}
	m.stop(current.JobID)
	m.controller.Cancel()
	if current.Kind == session.KindProcessing {
		if err := m.machine.Cancel(current.JobID); err != nil && !ignorable(err) {
			m.logger.Warn("cancel not applied", logging.Error(err))
		}
	}
	m.logger.Info("export cancelled by user", logging.JobID(current.JobID))
}

// Reset returns to Idle from any state, cancelling a running export.
func (m *Manager) Reset() {
	current := m.machine.Current()
	switch current.Kind {
	case session.KindValidating, session.KindProcessing:
		m.Cancel()
	case session.KindDone:
		_ = m.machine.Reset()
	case session.KindError:
		_ = m.machine.Dismiss()
	}
}

// Dismiss clears an Error state. Other states are left alone.
func (m *Manager) Dismiss() {
	if m.machine.Current().Kind == session.KindError {
		_ = m.machine.Dismiss()
	}
}

// SaveAs copies the finished output to dst, replacing any existing file. A
// failed copy moves the session to Error with the save message.
func (m *Manager) SaveAs(dst string) error {
	current := m.machine.Current()
	if current.Kind != session.KindDone {
		return ErrNothingToSave
	}
	err := fileutil.ReplaceFile(current.OutputPath, dst)
	if errors.Is(err, fileutil.ErrSameFile) {
		return nil
	}
	if err != nil {
		message := l10n.Text(m.lang, l10n.SaveFailed, err.Error())
		logging.ErrorWithContext(m.logger, "save failed", "save_failed",
			logging.Output(current.OutputPath),
			logging.String("destination", dst),
			logging.Error(err),
			logging.Hint("pick a writable destination"),
		)
		if serr := m.machine.SaveFailed(current.JobID, message); serr != nil && !ignorable(serr) {
			return serr
		}
		return fmt.Errorf("save %s: %w", dst, err)
	}
	m.logger.Info("output saved",
		logging.Output(current.OutputPath),
		logging.String("destination", dst),
	)
	return nil
}
