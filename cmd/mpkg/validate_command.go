package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mpkg/internal/manifestxml"
	"mpkg/internal/mediapackage"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "validate <manifest.xml>",
		Short: "Decode a manifest and report the first offending element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []mediapackage.Option
			if cmd.Flags().Changed("lenient") {
				extra = append(extra, mediapackage.WithIgnoreMissingElements(lenient))
			}
			p, path, err := ctx.loadPackage(cmd, args[0], extra...)
			if err != nil {
				var elemErr *manifestxml.ElementError
				if errors.As(err, &elemErr) {
					return fmt.Errorf("%s is invalid: %s element %d (%s): %w",
						args[0], elemErr.Kind, elemErr.Index+1, elemErr.ErrorKind(), elemErr.Err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manifest: %s\n", path)
			fmt.Fprintf(out, "Package:  %s\n", p.ID())
			fmt.Fprintf(out, "Elements: %d\n", p.Manifest().Size())
			fmt.Fprintln(out, "Manifest valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "Skip catalogs and attachments that fail to load")
	return cmd
}
