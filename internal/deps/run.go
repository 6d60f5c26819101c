package deps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// CommandRunner executes an external binary and returns its combined output.
// Tests substitute fakes; production code uses Run.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultGracePeriod is how long a cancelled process has to exit after
// SIGTERM before it is killed.
const DefaultGracePeriod = 5 * time.Second

// ExitError reports a non-zero exit with the tool's stderr.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run executes name with args in its own process group. When ctx is cancelled
// the whole group receives SIGTERM, then SIGKILL after DefaultGracePeriod.
// Stdout is returned; stderr is attached to any ExitError.
func Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return run(ctx, nil, name, args)
}

// RunWithEnv returns a CommandRunner that behaves like Run with extra
// KEY=VALUE entries appended to the inherited environment.
func RunWithEnv(env ...string) CommandRunner {
	extra := append([]string(nil), env...)
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return run(ctx, extra, name, args)
	}
}

func run(ctx context.Context, env []string, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // arguments are built by the caller
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
	cmd.WaitDelay = DefaultGracePeriod

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		return stdout.Bytes(), fmt.Errorf("%s terminated: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ExitError{
			Binary:   name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.Bytes(), fmt.Errorf("run %s: %w", name, err)
}
