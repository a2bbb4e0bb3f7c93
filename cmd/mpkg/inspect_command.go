package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <manifest.xml>",
		Short: "Summarize a media package and list its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := ctx.loadPackage(cmd, args[0])
			if err != nil {
				return err
			}
			view := newPackageView(p)
			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Package:     %s\n", view.ID)
			if view.Start != "" {
				fmt.Fprintf(out, "Start:       %s\n", view.Start)
			}
			if view.Duration >= 0 {
				fmt.Fprintf(out, "Duration:    %d ms\n", view.Duration)
			}
			fmt.Fprintf(out, "Tracks:      %d\n", view.Counts["track"])
			fmt.Fprintf(out, "Catalogs:    %d\n", view.Counts["catalog"])
			fmt.Fprintf(out, "Attachments: %d\n", view.Counts["attachment"])
			if len(view.Elements) == 0 {
				fmt.Fprintln(out, "No elements")
				return nil
			}
			fmt.Fprintln(out, renderTable(elementHeaders, elementRows(view.Elements), elementAligns, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
