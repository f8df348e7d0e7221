// Package config loads, normalizes, and validates audex configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files (YAML when the file ends in .yaml or .yml), and
// honours environment overrides such as AUDEX_WORK_DIR and AUDEX_FFMPEG. The
// Config type centralizes every knob the export pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
