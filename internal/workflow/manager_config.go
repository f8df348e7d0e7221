package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"audex/internal/config"
	"audex/internal/engine/ffmpeg"
	"audex/internal/export"
	"audex/internal/l10n"
	"audex/internal/media/ffprobe"
	"audex/internal/session"
)

// NewFromConfig builds a Manager backed by ffmpeg and ffprobe as configured.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workflow: config is required")
	}
	engine := ffmpeg.New(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithCancelGrace(time.Duration(cfg.FFmpeg.CancelGraceSeconds)*time.Second),
		ffmpeg.WithLogger(logger),
	)
	tracks := export.ProbeTrackLoader{
		Prober:   ffprobe.Prober{Binary: cfg.FFprobeBinary()},
		Language: cfg.Locale.Language,
	}
	return NewWithEngine(cfg, engine, tracks, logger)
}

// NewWithEngine builds a Manager around the given engine and track loader,
// taking every other setting from cfg.
func NewWithEngine(cfg *config.Config, engine export.Engine, tracks export.TrackLoader, logger *slog.Logger) (*Manager, error) {
	policy, err := export.ParseStartPolicy(cfg.Export.ConcurrentStart)
	if err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	format, err := export.ParseFormat(cfg.Export.DefaultFormat)
	if err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}

	machine := session.New(session.WithLogger(logger))
	var m *Manager
	controller := export.New(engine, tracks,
		export.WithWorkDir(cfg.Paths.WorkDir),
		export.WithProgressInterval(time.Duration(cfg.Export.ProgressIntervalMS)*time.Millisecond),
		export.WithStartPolicy(policy),
		export.WithMinFreeBytes(uint64(cfg.Export.MinFreeMiB)<<20),
		export.WithLogger(logger),
		export.WithProgressFunc(func(jobID string, fraction float64) {
			m.ObserveProgress(jobID, fraction)
		}),
	)
	m = NewManager(machine, controller,
		WithLanguage(l10n.Parse(cfg.Locale.Language)),
		WithFormat(format),
		WithStartPolicy(policy),
		WithLogger(logger),
	)
	return m, nil
}
