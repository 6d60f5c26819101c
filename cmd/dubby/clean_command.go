package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dubby/internal/logging"
	"dubby/internal/workdir"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover job scratch directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			result := workdir.CleanStale(baseContext(cmd), cfg.Paths.WorkDir, maxAge, logging.NewNop())
			out := cmd.OutOrStdout()
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			fmt.Fprintf(out, "Removed %d work directories\n", len(result.Removed))
			return result.Err
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove directories older than this")
	return cmd
}
