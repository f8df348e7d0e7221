package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"audex/internal/access"
	"audex/internal/export"
	"audex/internal/l10n"
	"audex/internal/logging"
	"audex/internal/services"
	"audex/internal/session"
)

// HandleDrop processes the first of the dropped paths. An empty drop or a
// file that is not a supported video ends in Error without starting an export.
func (m *Manager) HandleDrop(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return m.reject(ctx, l10n.NoFileDropped, errors.New("empty drop"))
	}
	if !m.controller.Validate(paths[0]) {
		return m.reject(ctx, l10n.DroppedNotVideo, export.ErrUnsupportedFormat)
	}
	return m.ProcessFile(ctx, paths[0], Dropped)
}

// reject records a drop that never became a job.
func (m *Manager) reject(ctx context.Context, key l10n.Key, cause error) error {
	id := uuid.NewString()
	if err := m.begin(id); err != nil {
		return err
	}
	message := l10n.Text(m.lang, key)
	logging.WarnWithContext(logging.WithContext(services.WithJobID(ctx, id), m.logger), "drop rejected", "drop_rejected",
		logging.String("reason", message),
		logging.Error(cause),
		logging.Hint("drop a single video file"),
		logging.Impact("nothing was exported"),
	)
	_ = m.machine.Fail(id, message)
	return cause
}

// ProcessFile validates path and exports its audio with the current format,
// blocking until the job ends. Picked files are held under an access token
// for the whole job. The returned error mirrors what the session shows;
// a cancelled job returns nil after the machine is back in Idle.
func (m *Manager) ProcessFile(ctx context.Context, path string, origin Origin) error {
	id := uuid.NewString()
	format := m.Format()
	runCtx, cancel := context.WithCancel(services.WithFormat(services.WithJobID(ctx, id), string(format)))
	defer cancel()

	// Tracked before Begin so a Cancel issued while Validating reaches runCtx.
	m.track(id, cancel)
	defer m.untrack(id)
	if err := m.begin(id); err != nil {
		return err
	}

	logger := logging.WithContext(runCtx, m.logger)
	logger.Info("processing file",
		logging.Source(path),
		logging.String("origin", origin.String()),
	)

	if origin == Picked {
		token, err := access.Acquire(path)
		if err != nil {
			logging.WarnWithContext(logger, "access token not acquired", "access_token",
				logging.Source(path),
				logging.Error(err),
				logging.Hint("close other programs writing to the file"),
				logging.Impact("the file is read without a lock"),
			)
		} else {
			defer func() {
				if err := token.Release(); err != nil {
					logger.Warn("access token release failed", logging.Error(err))
				}
			}()
		}
	}

	if !m.controller.Validate(path) {
		message := export.Message(export.ErrUnsupportedFormat, m.lang)
		_ = m.machine.Fail(id, message)
		logger.Info("file rejected", logging.String("reason", message))
		return export.ErrUnsupportedFormat
	}
	if err := m.machine.Validated(id); err != nil {
		return m.settleCancelled(logger, id, err)
	}
	if runCtx.Err() != nil {
		_ = m.machine.Cancel(id)
		return nil
	}

	output, err := m.controller.Export(runCtx, path, format)
	if err != nil {
		return m.settleFailure(logger, id, err)
	}
	if err := m.machine.Succeed(id, output); err != nil {
		return m.settleCancelled(logger, id, err)
	}
	logger.Info("file processed", logging.Output(output))
	return nil
}

// begin moves the machine into Validating for id, clearing a finished state
// first. A busy machine rejects the job unless the start policy supersedes.
func (m *Manager) begin(id string) error {
	for range 3 {
		err := m.machine.Begin(id)
		if err == nil {
			return nil
		}
		current := m.machine.Current()
		switch {
		case current.Kind == session.KindDone:
			_ = m.machine.Reset()
		case current.Kind == session.KindError:
			_ = m.machine.Dismiss()
		case current.Kind == session.KindProcessing && m.policy == export.StartSupersede:
			m.logger.Info("superseding active file",
				logging.String("superseded_job", current.JobID),
				logging.JobID(id),
			)
			_ = m.machine.Cancel(current.JobID)
			m.stop(current.JobID)
		case current.Kind == session.KindIdle:
		default:
			return export.ErrJobAlreadyActive
		}
	}
	return export.ErrJobAlreadyActive
}

func (m *Manager) settleFailure(logger *slog.Logger, id string, err error) error {
	if export.IsCancelled(err) {
		if cerr := m.machine.Cancel(id); cerr != nil && !ignorable(cerr) {
			logger.Warn("cancel not applied", logging.Error(cerr))
		}
		return nil
	}
	message := export.Message(err, m.lang)
	if ferr := m.machine.Fail(id, message); ferr != nil {
		if ignorable(ferr) {
			logger.Debug("late failure discarded", logging.Error(err))
			return nil
		}
		return ferr
	}
	return err
}

// settleCancelled handles a transition refused because the job was cancelled
// or superseded while it ran.
func (m *Manager) settleCancelled(logger *slog.Logger, id string, err error) error {
	if ignorable(err) {
		logger.Debug("job no longer current", logging.Error(err))
		return nil
	}
	return err
}
