package config

import "os"

const (
	defaultLogDir             = "~/.local/share/audex/logs"
	defaultFormat             = "m4a"
	defaultProgressIntervalMS = 100
	defaultConcurrentStart    = ConcurrentStartReject
	defaultMinFreeMiB         = 16
	defaultCancelGraceSeconds = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLanguage           = "es"
	defaultNtfyTimeoutSeconds = 10
)

// Concurrent start policies accepted by export.concurrent_start.
const (
	ConcurrentStartReject    = "reject"
	ConcurrentStartSupersede = "supersede"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: os.TempDir(),
			LogDir:  defaultLogDir,
		},
		Export: Export{
			DefaultFormat:      defaultFormat,
			ProgressIntervalMS: defaultProgressIntervalMS,
			ConcurrentStart:    defaultConcurrentStart,
			MinFreeMiB:         defaultMinFreeMiB,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:       "ffmpeg",
			FFprobeBinary:      "ffprobe",
			CancelGraceSeconds: defaultCancelGraceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Locale: Locale{
			Language: defaultLanguage,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
