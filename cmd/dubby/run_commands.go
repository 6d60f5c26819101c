package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dubby/internal/config"
	"dubby/internal/jobs"
	"dubby/internal/preflight"
	"dubby/internal/workflow"
)

type runFlags struct {
	lang       string
	sourceLang string
	outputDir  string
	keepTrack  bool
	jsonOutput bool
}

func newCaptionCommand(ctx *commandContext) *cobra.Command {
	return newJobCommand(ctx, jobs.ActionCaption, &cobra.Command{
		Use:     "caption <media-file>",
		Aliases: []string{"subtitle", "captions", "subtitles"},
		Short:   "Transcribe media and write a caption file in the target language",
		Example: "  dubby caption talk.mp4 --lang ko\n  dubby caption talk.mp4 --lang en --json",
	})
}

func newDubCommand(ctx *commandContext) *cobra.Command {
	return newJobCommand(ctx, jobs.ActionDub, &cobra.Command{
		Use:     "dub <media-file>",
		Aliases: []string{"dubbing"},
		Short:   "Replace the speech in media with a time-aligned synthesized track",
		Example: "  dubby dub talk.mp4 --lang ja\n  dubby dub podcast.mp3 --lang ko --keep-track",
	})
}

func newJobCommand(ctx *commandContext, action jobs.Action, cmd *cobra.Command) *cobra.Command {
	var flags runFlags

	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("provide the path to one media file. Example: dubby %s /path/to/video.mp4 --lang ko\nRun dubby %s --help for more details", cmd.Name(), cmd.Name())
		}
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		source := strings.TrimSpace(args[0])
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
		req := workflow.Request{
			Action:         action,
			SourcePath:     source,
			TargetLanguage: strings.TrimSpace(flags.lang),
			SourceLanguage: strings.TrimSpace(flags.sourceLang),
			KeepTrack:      flags.keepTrack,
		}
		if dir := strings.TrimSpace(flags.outputDir); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}
			req.OutputDir = expanded
		}
		return runJob(cmd, ctx, cfg, req, flags.jsonOutput)
	}

	cmd.Flags().StringVarP(&flags.lang, "lang", "l", "", "Target language (BCP-47, e.g. ko, ja, zh-CN)")
	cmd.Flags().StringVar(&flags.sourceLang, "source-lang", "", "Language spoken in the media (defaults to languages.source)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for outputs (defaults to paths.output_dir or next to the source)")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the job result as JSON")
	if action == jobs.ActionDub {
		cmd.Flags().BoolVar(&flags.keepTrack, "keep-track", false, "Keep the assembled dub track WAV next to the output")
	}
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func runJob(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, req workflow.Request, jsonOutput bool) error {
	results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{})
	if failed := preflight.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%s: %s", failed[0].Name, failed[0].Detail)
	}

	logger, err := ctx.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	svc, err := ctx.buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	runCtx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(runCtx); err != nil {
		return err
	}

	result := svc.Run(runCtx, req)
	if jsonOutput {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), result)
	}
	if err := result.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &reportedError{err: err}
	}
	return nil
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printResult(out io.Writer, result workflow.Result) {
	if !result.Succeeded() {
		if result.JobID != "" {
			fmt.Fprintf(out, "Job %s %s: %s\n", shortID(result.JobID), result.Status, result.Error)
		} else {
			fmt.Fprintf(out, "Job rejected: %s\n", result.Error)
		}
		return
	}
	fmt.Fprintf(out, "Job %s completed\n", shortID(result.JobID))
	for _, line := range []struct{ label, path string }{
		{"Captions", result.CaptionPath},
		{"Video", result.VideoPath},
		{"Audio", result.AudioPath},
	} {
		if line.path != "" {
			fmt.Fprintf(out, "  %-9s %s\n", line.label+":", line.path)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
