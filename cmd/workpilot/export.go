package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export <group-id> [period]",
		Short: "Export a group's reports for a period as Markdown",
		Long:  "Export a group's reports for a period (YYYY-Www, defaults to the current week) to the configured export sink.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid group id %q: %w", args[0], err)
			}
			var periodID string
			if len(args) == 2 {
				periodID = args[1]
			}

			a, err := newApp(cmd.Context(), opts.cfg, nil, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.reports.Exporter.Export(cmd.Context(), groupID, periodID)
			if err != nil {
				return err
			}
			if stdout {
				_, err := cmd.OutOrStdout().Write(doc.Body)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.Location)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the document instead of its location")
	return cmd
}
