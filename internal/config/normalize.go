package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeFFmpeg()
	c.normalizeLogging()
	c.normalizeLocale()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = os.TempDir()
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.DefaultFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Export.DefaultFormat), "."))
	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = defaultFormat
	}
	if c.Export.ProgressIntervalMS == 0 {
		c.Export.ProgressIntervalMS = defaultProgressIntervalMS
	}
	c.Export.ConcurrentStart = strings.ToLower(strings.TrimSpace(c.Export.ConcurrentStart))
	if c.Export.ConcurrentStart == "" {
		c.Export.ConcurrentStart = defaultConcurrentStart
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.CancelGraceSeconds == 0 {
		c.FFmpeg.CancelGraceSeconds = defaultCancelGraceSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeLocale() {
	c.Locale.Language = strings.TrimSpace(c.Locale.Language)
	if c.Locale.Language == "" {
		c.Locale.Language = defaultLanguage
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds == 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}
