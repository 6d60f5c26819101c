package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dubby/internal/config"
)

// ConfigOption adjusts a config produced by NewConfig. base is the per-test
// root directory.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns the default config with every directory under a fresh
// t.TempDir and a placeholder OpenAI key.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.OpenAI.APIKey = "test"
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// BaseDir is the temp root NewConfig created for cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

func WithOpenAIKey(key string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.OpenAI.APIKey = key }
}

// WithOutputDir sends artifacts to <base>/<name> instead of beside the source.
func WithOutputDir(name string) ConfigOption {
	return func(_ testing.TB, base string, cfg *config.Config) {
		cfg.Paths.OutputDir = filepath.Join(base, name)
	}
}

// WithStubbedBinaries puts no-op executables first on PATH for the duration
// of the test. With no names it stubs ffmpeg, ffprobe and uvx.
func WithStubbedBinaries(names ...string) ConfigOption {
	if len(names) == 0 {
		names = []string{"ffmpeg", "ffprobe", "uvx"}
	}
	return func(t testing.TB, base string, _ *config.Config) {
		t.Helper()
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
