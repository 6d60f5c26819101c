package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"dubby/internal/config"
	"dubby/internal/jobs"
)

// WriteFile creates a placeholder media file of size bytes (at least one),
// creating parent directories. Tests that stub ffprobe only need the path to
// exist.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, max(size, 1)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MustOpenStore opens the job store configured by cfg and closes it when the
// test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg.JobsDBPath())
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
