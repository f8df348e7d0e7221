package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"audex/internal/deps"
	"audex/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, ffprobe and the work directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			failed := !deps.Satisfied(statuses)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Path
				if status.Detail != "" {
					detail = status.Detail
				}
				depRows = append(depRows, []string{status.Name, yesNo(status.Available), status.Version, detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Dependency", "Available", "Version", "Detail"}, depRows, nil))

			results := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				if !result.Passed {
					failed = true
				}
				checkRows = append(checkRows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Passed", "Detail"}, checkRows, nil))

			if failed {
				return errors.New("one or more checks failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
