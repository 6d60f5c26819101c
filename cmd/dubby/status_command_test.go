package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"dubby/internal/deps"
	"dubby/internal/preflight"
)

func TestStatusCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "Work directory:")
	requireContains(t, out, "Skipped (--offline)")
	requireContains(t, out, "No jobs recorded")
}

func TestStatusCommandMissingKeyIsWarning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status with whisperx backend should pass without key: %v", err)
	}
	requireContains(t, out, "[WARN] API key missing")
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyStatusLine(t *testing.T) {
	tests := []struct {
		name   string
		status deps.Status
		want   string
	}{
		{"available", deps.Status{Requirement: deps.Requirement{Name: "FFmpeg", Command: "ffmpeg"}, Path: "/bin/ffmpeg", Available: true}, "[OK] /bin/ffmpeg"},
		{"missing", deps.Status{Requirement: deps.Requirement{Name: "FFprobe"}, Detail: `binary "ffprobe" not found`}, "[ERROR]"},
		{"optional", deps.Status{Requirement: deps.Requirement{Name: "uvx", Optional: true, Description: "Runs WhisperX"}, Detail: `binary "uvx" not found`}, `[WARN] binary "uvx" not found (Runs WhisperX)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireContains(t, dependencyStatusLine(tt.status, false), tt.want)
		})
	}
}

func TestPreflightStatusLine(t *testing.T) {
	line := preflightStatusLine(preflight.Result{Name: "Work directory", Detail: "gone"}, statusError, false)
	requireContains(t, line, "[ERROR] gone")
	line = preflightStatusLine(preflight.Result{Name: "Work directory", Passed: true, Detail: "ok"}, statusError, false)
	requireContains(t, line, "[OK] ok")
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Status", "Count"}, [][]string{{"completed", "3"}, {"failed"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "Status")
	requireContains(t, out, "completed")
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline")
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatalf("expected empty table for no headers")
	}
}
