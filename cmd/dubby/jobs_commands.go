package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubby/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and prune job history",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	jobsCmd.AddCommand(newJobsStatsCommand(ctx))

	return jobsCmd
}

func parseStatuses(values []string) ([]jobs.Status, error) {
	var statuses []jobs.Status
	for _, value := range values {
		status, err := jobs.ParseStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				list, err := store.List(cmd.Context(), jobs.ListOptions{Statuses: statuses, Limit: limit})
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]jobView, 0, len(list))
					for _, job := range list {
						views = append(views, newJobView(job))
					}
					return writeJSON(cmd, views)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Action", "Lang", "Status", "Source", "Created"},
					buildJobRows(list),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print jobs as JSON")
	return cmd
}

func buildJobRows(list []*jobs.Job) [][]string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		rows = append(rows, []string{
			shortID(job.ID),
			string(job.Action),
			job.TargetLanguage,
			string(job.Status),
			filepath.Base(job.SourcePath),
			job.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job, matched by full ID or a unique 8+ character prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %q not found", strings.TrimSpace(args[0]))
				}
				if jsonOutput {
					return writeJSON(cmd, newJobView(job))
				}
				out := cmd.OutOrStdout()
				for _, line := range jobDetailLines(job) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the job as JSON")
	return cmd
}

func jobDetailLines(job *jobs.Job) []string {
	field := func(label, value string) string {
		return fmt.Sprintf("%-12s %s", label+":", value)
	}
	lines := []string{
		field("ID", job.ID),
		field("Action", string(job.Action)),
		field("Status", string(job.Status)),
		field("Stage", job.Stage),
		field("Source", job.SourcePath),
		field("Languages", fmt.Sprintf("%s -> %s", job.SourceLanguage, job.TargetLanguage)),
		field("Segments", strconv.Itoa(job.SegmentCount)),
		field("Created", job.CreatedAt.Local().Format(time.RFC3339)),
		field("Updated", job.UpdatedAt.Local().Format(time.RFC3339)),
	}
	for _, artifact := range job.Artifacts() {
		lines = append(lines, field("Output", artifact))
	}
	if job.ErrorMessage != "" {
		lines = append(lines, field("Error", job.ErrorMessage))
	}
	for _, warning := range job.Warnings {
		lines = append(lines, field("Warning", warning))
	}
	return lines
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var clearStatuses []string
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll && len(clearStatuses) > 0 {
				return errors.New("specify only one of --all or --status")
			}
			statuses, err := parseStatuses(clearStatuses)
			if err != nil {
				return err
			}
			if clearAll {
				statuses = jobs.AllStatuses()
			}
			return ctx.withStore(func(store *jobs.Store) error {
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d jobs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&clearStatuses, "status", "s", nil, "Only clear jobs in this status (repeatable)")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Clear every job, including pending and running rows")
	return cmd
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count jobs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				var rows [][]string
				for _, status := range jobs.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

// jobView is the JSON shape of a job in history output.
type jobView struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	Status         string    `json:"status"`
	Stage          string    `json:"stage,omitempty"`
	SourcePath     string    `json:"source_path"`
	SourceLanguage string    `json:"source_language,omitempty"`
	TargetLanguage string    `json:"target_language"`
	CaptionPath    string    `json:"subtitle_path,omitempty"`
	VideoPath      string    `json:"video_path,omitempty"`
	AudioPath      string    `json:"audio_path,omitempty"`
	Error          string    `json:"error,omitempty"`
	Warnings       []string  `json:"warnings,omitempty"`
	SegmentCount   int       `json:"segment_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newJobView(job *jobs.Job) jobView {
	return jobView{
		ID:             job.ID,
		Action:         string(job.Action),
		Status:         string(job.Status),
		Stage:          job.Stage,
		SourcePath:     job.SourcePath,
		SourceLanguage: job.SourceLanguage,
		TargetLanguage: job.TargetLanguage,
		CaptionPath:    job.CaptionPath,
		VideoPath:      job.VideoPath,
		AudioPath:      job.AudioPath,
		Error:          job.ErrorMessage,
		Warnings:       job.Warnings,
		SegmentCount:   job.SegmentCount,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
