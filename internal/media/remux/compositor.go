// Package remux composites an assembled dub track onto the source video
// without re-encoding the picture.
package remux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"dubby/internal/deps"
	"dubby/internal/fileutil"
	"dubby/internal/logging"
	"dubby/internal/services"
)

// AudioBitrate is the AAC bitrate of the output track.
const AudioBitrate = "192k"

// Compositor drives ffmpeg to mux a new audio track onto a video.
type Compositor struct {
	ffmpeg string
	run    deps.CommandRunner
	logger *slog.Logger
}

// Option customizes a Compositor.
type Option func(*Compositor)

// WithCommandRunner allows injecting a custom command runner for tests.
func WithCommandRunner(run deps.CommandRunner) Option {
	return func(c *Compositor) {
		if run != nil {
			c.run = run
		}
	}
}

// NewCompositor constructs a compositor.
func NewCompositor(ffmpegBinary string, logger *slog.Logger, opts ...Option) *Compositor {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Compositor{
		ffmpeg: deps.ResolveFFmpegPath(ffmpegBinary),
		run:    deps.Run,
		logger: logging.NewComponentLogger(logger, "remux"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose writes outputPath with the first video stream of videoPath copied
// as-is and audioPath as the only audio track. The output stops at the
// shorter of the two streams. On failure outputPath is left untouched.
func (c *Compositor) Compose(ctx context.Context, videoPath, audioPath, outputPath string) error {
	return c.compose(ctx, outputPath, []string{videoPath, audioPath}, func(tmp string) []string {
		return []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", videoPath,
			"-i", audioPath,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", AudioBitrate,
			"-shortest",
			tmp,
		}
	})
}

// ComposeAudioOnly encodes audioPath to AAC at outputPath. It stands in for
// Compose when the source has no video stream.
func (c *Compositor) ComposeAudioOnly(ctx context.Context, audioPath, outputPath string) error {
	return c.compose(ctx, outputPath, []string{audioPath}, func(tmp string) []string {
		return []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", audioPath,
			"-vn",
			"-c:a", "aac",
			"-b:a", AudioBitrate,
			tmp,
		}
	})
}

func (c *Compositor) compose(ctx context.Context, outputPath string, inputs []string, buildArgs func(tmp string) []string) (err error) {
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrValidation, "remux", "compose", "output path is required", nil)
	}
	for _, input := range inputs {
		if _, statErr := os.Stat(input); statErr != nil {
			return services.Wrap(services.ErrValidation, "remux", "compose", fmt.Sprintf("input not found %q", input), statErr)
		}
	}

	lockPath := fileutil.HiddenSibling(outputPath, "lock")
	lock := flock.New(lockPath)
	locked, lockErr := lock.TryLock()
	if lockErr != nil {
		return services.Wrap(services.ErrConfiguration, "remux", "lock output", outputPath, lockErr)
	}
	if !locked {
		return services.Wrap(services.ErrValidation, "remux", "lock output", fmt.Sprintf("%s is being written by another job", outputPath), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	tmpPath := fileutil.HiddenSibling(outputPath, "mux")
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("executing ffmpeg",
		logging.String("output", outputPath),
		logging.Int("inputs", len(inputs)),
	)
	if _, runErr := c.run(ctx, c.ffmpeg, buildArgs(tmpPath)...); runErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("remux canceled: %w", runErr)
		}
		message := "ffmpeg failed"
		var exitErr *deps.ExitError
		if errors.As(runErr, &exitErr) && exitErr.Stderr != "" {
			message = "ffmpeg failed: " + exitErr.Stderr
		}
		logging.ErrorWithContext(logger, "remux failed", "remux_failed",
			logging.String("output", outputPath),
			logging.Error(runErr),
		)
		return services.Wrap(services.ErrExternalTool, "remux", "ffmpeg", message, runErr)
	}

	if _, statErr := os.Stat(tmpPath); statErr != nil {
		return services.Wrap(services.ErrExternalTool, "remux", "ffmpeg", "ffmpeg did not produce output file", statErr)
	}
	if renameErr := os.Rename(tmpPath, outputPath); renameErr != nil {
		return services.Wrap(services.ErrExternalTool, "remux", "finalize", fmt.Sprintf("rename into %s", filepath.Base(outputPath)), renameErr)
	}

	logger.Info("dub track composited",
		logging.String(logging.FieldEventType, "remux_complete"),
		logging.String("output", outputPath),
	)
	return nil
}
