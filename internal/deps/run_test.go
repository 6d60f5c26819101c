package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunReturnsStdout(t *testing.T) {
	tool := writeScript(t, "echo hello\n")
	out, err := Run(context.Background(), tool)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Fatalf("unexpected stdout %q", out)
	}
}

func TestRunReportsExitCodeAndStderr(t *testing.T) {
	tool := writeScript(t, "echo 'bad input' >&2\nexit 3\n")
	_, err := Run(context.Background(), tool)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.ExitCode)
	}
	if exitErr.Stderr != "bad input" {
		t.Fatalf("stderr = %q", exitErr.Stderr)
	}
}

func TestRunTerminatesOnCancel(t *testing.T) {
	tool := writeScript(t, "sleep 30\n")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, tool)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("process was awaited instead of terminated (%s)", elapsed)
	}
}

func TestRunWithEnvAddsVariables(t *testing.T) {
	tool := writeScript(t, "printf '%s' \"$DUBBY_TEST_VALUE\"\n")
	out, err := RunWithEnv("DUBBY_TEST_VALUE=present")(context.Background(), tool)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if string(out) != "present" {
		t.Fatalf("stdout = %q, want present", out)
	}
}
