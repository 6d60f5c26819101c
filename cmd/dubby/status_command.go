package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubby/internal/config"
	"dubby/internal/deps"
	"dubby/internal/jobs"
	"dubby/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories, and API access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string
			healthy := true

			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := deps.CheckBinaries(deps.Requirements(
				cfg.FFmpegBinary(),
				cfg.FFprobeBinary(),
				cfg.ASR.Backend == config.ASRBackendWhisperX,
			))
			for _, status := range statuses {
				lines = append(lines, dependencyStatusLine(status, colorize))
			}
			if len(deps.Missing(statuses)) > 0 {
				healthy = false
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			checks := preflight.RunAll(cmd.Context(), cfg, preflight.Options{})
			for _, result := range checks {
				lines = append(lines, preflightStatusLine(result, statusError, colorize))
			}
			if len(preflight.Failed(checks)) > 0 {
				healthy = false
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Services", colorize)...)
			lines = append(lines, renderStatusLine("ASR backend", statusInfo, cfg.ASR.Backend, colorize))
			if offline {
				lines = append(lines, renderStatusLine("OpenAI API", statusInfo, "Skipped (--offline)", colorize))
			} else {
				api := preflight.CheckOpenAI(baseContext(cmd), cfg)
				// Caption jobs with the local recognizer run without the API.
				kind := statusWarn
				if cfg.ASR.Backend == config.ASRBackendOpenAI {
					kind = statusError
					if !api.Passed {
						healthy = false
					}
				}
				lines = append(lines, preflightStatusLine(api, kind, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Jobs", colorize)...)
			lines = append(lines, jobStatsLines(ctx, cmd, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if !healthy {
				return &reportedError{err: errors.New("status: required checks failed")}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the API reachability check")
	return cmd
}

func dependencyStatusLine(status deps.Status, colorize bool) string {
	if status.Available {
		return renderStatusLine(status.Name, statusOK, status.Path, colorize)
	}
	kind := statusError
	if status.Optional {
		kind = statusWarn
	}
	detail := status.Detail
	if status.Description != "" {
		detail = fmt.Sprintf("%s (%s)", detail, status.Description)
	}
	return renderStatusLine(status.Name, kind, detail, colorize)
}

func preflightStatusLine(result preflight.Result, failKind statusKind, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, failKind, result.Detail, colorize)
}

func jobStatsLines(ctx *commandContext, cmd *cobra.Command, colorize bool) []string {
	var lines []string
	err := ctx.withStore(func(store *jobs.Store) error {
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		total := 0
		for _, status := range jobs.AllStatuses() {
			count := stats[status]
			total += count
			if count == 0 {
				continue
			}
			lines = append(lines, renderStatusLine(string(status), statusInfo, fmt.Sprintf("%d", count), colorize))
		}
		if total == 0 {
			lines = append(lines, renderStatusLine("History", statusInfo, "No jobs recorded", colorize))
		}
		return nil
	})
	if err != nil {
		return []string{renderStatusLine("History", statusWarn, err.Error(), colorize)}
	}
	return lines
}
