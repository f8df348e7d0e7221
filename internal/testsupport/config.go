package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"audex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Export.MinFreeMiB = 0
	cfgVal.Export.ProgressIntervalMS = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithConcurrentStart sets the concurrent start policy on the test config.
func WithConcurrentStart(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.ConcurrentStart = policy
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		scripts := make(map[string]string, len(names))
		for _, name := range names {
			scripts[name] = "exit 0\n"
		}
		binDir := WriteScripts(b.t, filepath.Join(b.baseDir, "bin"), scripts)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithFFmpegScripts installs shell bodies as the ffmpeg and ffprobe binaries
// and points the config at them. An empty body leaves that binary unchanged.
func WithFFmpegScripts(ffmpegBody, ffprobeBody string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		scripts := map[string]string{}
		if ffmpegBody != "" {
			scripts["ffmpeg"] = ffmpegBody
			b.cfg.FFmpeg.FFmpegBinary = filepath.Join(binDir, "ffmpeg")
		}
		if ffprobeBody != "" {
			scripts["ffprobe"] = ffprobeBody
			b.cfg.FFmpeg.FFprobeBinary = filepath.Join(binDir, "ffprobe")
		}
		WriteScripts(b.t, binDir, scripts)
	}
}

// WriteScripts writes each body as an executable "#!/bin/sh" script under dir
// and returns dir.
func WriteScripts(t testing.TB, dir string, scripts map[string]string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, body := range scripts {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	return dir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
