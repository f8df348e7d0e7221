package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"audex/internal/l10n"
)

// Format is a target audio format.
type Format string

const (
	FormatM4A Format = "m4a"
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"

	DefaultFormat = FormatM4A
)

// Preset identifiers understood by engines.
const (
	PresetAAC256      = "aac-256k"
	PresetPassthrough = "passthrough"
	PresetMP3192      = "mp3-192k"
)

// Preset binds a format to its container tag and engine preset.
// BytesPerSecond estimates output size; zero means "derive from the source".
type Preset struct {
	ID             string
	ContainerType  string
	BytesPerSecond int64
	Label          l10n.Key
}

var presets = map[Format]Preset{
	FormatM4A: {ID: PresetAAC256, ContainerType: "ipod", BytesPerSecond: 256_000 / 8, Label: l10n.FormatM4A},
	FormatWAV: {ID: PresetPassthrough, ContainerType: "wav", Label: l10n.FormatWAV},
	FormatMP3: {ID: PresetMP3192, ContainerType: "mp3", BytesPerSecond: 192_000 / 8, Label: l10n.FormatMP3},
}

// Formats returns every supported format, default first.
func Formats() []Format {
	return []Format{FormatM4A, FormatWAV, FormatMP3}
}

// ParseFormat accepts a format name in any case, with or without a leading dot.
// An empty value selects DefaultFormat.
func ParseFormat(value string) (Format, error) {
	cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	if cleaned == "" {
		return DefaultFormat, nil
	}
	format := Format(cleaned)
	if _, ok := presets[format]; !ok {
		return "", fmt.Errorf("unknown export format %q", value)
	}
	return format, nil
}

// Valid reports whether f is one of Formats().
func (f Format) Valid() bool {
	_, ok := presets[f]
	return ok
}

// Extension returns the output file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Preset returns the engine preset for f.
func (f Format) Preset() Preset {
	return presets[f]
}

// ContainerType returns the output container tag for f.
func (f Format) ContainerType() string {
	return presets[f].ContainerType
}

// Name returns the display name, e.g. "M4A".
func (f Format) Name(tag language.Tag) string {
	return cases.Upper(tag).String(string(f))
}

// Description returns the localized one-line description of f.
func (f Format) Description(tag language.Tag) string {
	preset, ok := presets[f]
	if !ok {
		return ""
	}
	return l10n.Text(tag, preset.Label)
}

// EstimateBytes predicts the output size for a source of the given duration.
// PCM outputs use the source sample rate and channel count, defaulting to
// 48 kHz stereo 16-bit when those are unknown.
func (p Preset) EstimateBytes(duration time.Duration, sampleRate, channels int) uint64 {
	if duration <= 0 {
		return 0
	}
	rate := p.BytesPerSecond
	if rate == 0 {
		if sampleRate <= 0 {
			sampleRate = 48_000
		}
		if channels <= 0 {
			channels = 2
		}
		rate = int64(sampleRate) * int64(channels) * 2
	}
	return uint64(duration.Seconds() * float64(rate))
}
