package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audex/internal/export"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the audio formats audex can write",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tag := ctx.language()
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(export.Formats()))
			for _, format := range export.Formats() {
				preset := format.Preset()
				marker := ""
				if string(format) == cfg.Export.DefaultFormat {
					marker = "*"
				}
				rows = append(rows, []string{
					marker,
					format.Name(tag),
					format.Extension(),
					preset.ContainerType,
					preset.ID,
					format.Description(tag),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"", "Format", "Extension", "Container", "Preset", "Description"},
				rows,
				nil,
			))
			return nil
		},
	}
}
