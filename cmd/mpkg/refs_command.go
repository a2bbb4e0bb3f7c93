package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mpkg/internal/manifest"
)

func newRefsCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var derived bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "refs <manifest.xml> <reference>",
		Short: "List elements that refer to a reference, optionally through derivation chains",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := manifest.ParseReference(args[1])
			if err != nil {
				return err
			}
			p, _, err := ctx.loadPackage(cmd, args[0])
			if err != nil {
				return err
			}

			m := p.Manifest()
			var matches []manifest.Element
			if strings.TrimSpace(kindFlag) == "" {
				matches = m.AllByReference(ref, derived)
			} else {
				kind, err := manifest.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				matches = m.ByReference(kind, ref, derived)
			}

			views := newElementViews(matches)
			if jsonOutput {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No elements refer to %s\n", ref)
				return nil
			}
			fmt.Fprintln(out, renderTable(elementHeaders, elementRows(views), elementAligns, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Restrict to one element kind")
	cmd.Flags().BoolVar(&derived, "derived", false, "Follow derivation chains")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
