package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"highlighter/internal/config"
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
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.StripDir = filepath.Join(base, "strips")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Probe.TimeoutSeconds = 5

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

// WithStripFrames overrides the number of frames sampled into a strip.
func WithStripFrames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Strip.Frames = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffprobe and ffmpeg are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "ffmpeg"}
		}
		binDir := stubDir(b)
		for _, name := range names {
			WriteStub(b.t, binDir, name, "exit 0\n")
		}
	}
}

// WithStubScript installs a stub named name running body under /bin/sh and
// points the matching config field at it when name is ffprobe or ffmpeg.
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		path := WriteStub(b.t, stubDir(b), name, body)
		switch name {
		case "ffprobe":
			b.cfg.Probe.FFprobeBinary = path
		case "ffmpeg":
			b.cfg.Decode.FFmpegBinary = path
		}
	}
}

func stubDir(b *configBuilder) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	oldPath := os.Getenv("PATH")
	if filepath.SplitList(oldPath)[0] != binDir {
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath)
	}
	return binDir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
