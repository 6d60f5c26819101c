package workdir

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dubby/internal/logging"
)

func mkdirAged(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	if age > 0 {
		when := time.Now().Add(-age)
		if err := os.Chtimes(dir, when, when); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	return dir
}

func TestCreate(t *testing.T) {
	root := t.TempDir()
	dir, err := Create(root, "0123456789abcdef")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	name := filepath.Base(dir)
	if !strings.HasPrefix(name, "job-01234567-") {
		t.Fatalf("unexpected name %q", name)
	}
	prefix, ok := JobIDPrefix(name)
	if !ok || prefix != "01234567" {
		t.Fatalf("JobIDPrefix(%q) = %q, %v", name, prefix, ok)
	}
}

func TestJobIDPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		ok     bool
	}{
		{"job-abcd1234-99", "abcd1234", true},
		{"job--99", "", false},
		{"job-abcd1234", "", false},
		{"cache", "", false},
	}
	for _, tt := range tests {
		prefix, ok := JobIDPrefix(tt.name)
		if prefix != tt.prefix || ok != tt.ok {
			t.Errorf("JobIDPrefix(%q) = %q, %v; want %q, %v", tt.name, prefix, ok, tt.prefix, tt.ok)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || result.Err != nil {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldJobDirectories(t *testing.T) {
	root := t.TempDir()
	old := mkdirAged(t, root, "job-aaaaaaaa-1", 2*time.Hour)
	recent := mkdirAged(t, root, "job-bbbbbbbb-1", 0)
	unrelated := mkdirAged(t, root, "models", 2*time.Hour)

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	for _, keep := range []string{recent, unrelated} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should still exist", keep)
		}
	}
}

func TestCleanOrphanedKeepsActiveJobs(t *testing.T) {
	root := t.TempDir()
	active := mkdirAged(t, root, "job-aaaaaaaa-1", 0)
	orphan := mkdirAged(t, root, "job-bbbbbbbb-1", 0)

	set := ActiveSet([]string{"aaaaaaaa-1111-2222-3333-444444444444"})
	result := CleanOrphaned(context.Background(), root, set, nil)
	if len(result.Removed) != 1 || result.Removed[0] != orphan {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	if _, err := os.Stat(active); err != nil {
		t.Fatalf("active directory removed: %v", err)
	}
}

func TestCleanIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "job-aaaaaaaa-1")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CleanOrphaned(context.Background(), root, nil, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("expected files to be ignored, got %v", result.Removed)
	}
}
