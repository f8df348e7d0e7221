package config

import (
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/text/language"
)

var supportedFormats = map[string]struct{}{
	"m4a": {},
	"wav": {},
	"mp3": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateLocale(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExport() error {
	if _, ok := supportedFormats[c.Export.DefaultFormat]; !ok {
		return fmt.Errorf("export.default_format: unsupported value %q (use m4a, wav or mp3)", c.Export.DefaultFormat)
	}
	if c.Export.ProgressIntervalMS < 10 {
		return errors.New("export.progress_interval_ms must be at least 10")
	}
	switch c.Export.ConcurrentStart {
	case ConcurrentStartReject, ConcurrentStartSupersede:
	default:
		return fmt.Errorf("export.concurrent_start: unsupported value %q (use %s or %s)", c.Export.ConcurrentStart, ConcurrentStartReject, ConcurrentStartSupersede)
	}
	if c.Export.MinFreeMiB < 0 {
		return errors.New("export.min_free_mib must be zero or positive")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.CancelGraceSeconds < 0 {
		return errors.New("ffmpeg.cancel_grace_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateLocale() error {
	if _, err := language.Parse(c.Locale.Language); err != nil {
		return fmt.Errorf("locale.language: %w", err)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be zero or positive")
	}
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic: expected an http(s) URL, got %q", topic)
	}
	return nil
}
