package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mpkg/internal/config"
	"mpkg/internal/elementbuilder"
	"mpkg/internal/fileutil"
	"mpkg/internal/manifest"
	"mpkg/internal/mediaprobe"
	"mpkg/internal/mediapackage"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var flavorFlag string
	var tags []string
	var refFlag string
	var description string
	var probe bool
	var copyFile bool
	var ffprobeBinary string

	cmd := &cobra.Command{
		Use:   "add <manifest.xml> <file>",
		Short: "Add a file to a media package, creating the manifest if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := manifest.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			flavor, err := manifest.ParseFlavor(flavorFlag)
			if err != nil {
				return err
			}
			var ref *manifest.Reference
			if strings.TrimSpace(refFlag) != "" {
				parsed, err := manifest.ParseReference(refFlag)
				if err != nil {
					return err
				}
				ref = &parsed
			}

			path, err := ctx.manifestPath(args[0])
			if err != nil {
				return err
			}
			var builderOpts []elementbuilder.Option
			if probe {
				prober := mediaprobe.FFprobe{Binary: ffprobeBinary}
				if _, err := prober.LookPath(); err != nil {
					return fmt.Errorf("--probe: %w", err)
				}
				builderOpts = append(builderOpts, elementbuilder.WithProber(prober))
			}
			opts, err := ctx.packageOptions(cmd, path, builderOpts...)
			if err != nil {
				return err
			}
			locator, err := locatorArg(args[1])
			if err != nil {
				return err
			}
			if copyFile {
				if locator, err = copyIntoPackage(ctx, locator, path); err != nil {
					return err
				}
			}

			var added manifest.Element
			err = mediapackage.Update(cmd.Context(), path, true, func(p *mediapackage.Package) error {
				el, err := p.Builder().ElementFromLocator(locator, kind, flavor)
				if err != nil {
					return fmt.Errorf("build %s from %q: %w", kind, args[1], err)
				}
				decorate(el, tags, ref, description)
				if err := p.Add(el); err != nil {
					return err
				}
				added = el
				return nil
			}, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", added.Kind(), added.ID(), added.URI())
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "attachment", "Element kind: track, catalog, attachment, or other")
	cmd.Flags().StringVar(&flavorFlag, "flavor", "", "Element flavor as type/subtype")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVar(&refFlag, "ref", "", "Reference to another element, e.g. track:track-1")
	cmd.Flags().StringVar(&description, "description", "", "Element description")
	cmd.Flags().BoolVar(&copyFile, "copy", false, "Copy the file next to the manifest before adding it")
	cmd.Flags().BoolVar(&probe, "probe", false, "Read track duration with ffprobe")
	cmd.Flags().StringVar(&ffprobeBinary, "ffprobe", "", "ffprobe executable (default: ffprobe from PATH)")
	_ = cmd.MarkFlagRequired("flavor")
	return cmd
}

// locatorArg makes local file arguments absolute so they resolve against the
// working directory rather than the manifest's.
func locatorArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "file:") {
		return arg, nil
	}
	return config.ExpandPath(arg)
}

// copyIntoPackage copies a local file into the manifest's directory and
// returns the copy's path.
func copyIntoPackage(ctx *commandContext, locator, manifestPath string) (string, error) {
	if strings.Contains(locator, "://") || strings.HasPrefix(locator, "file:") {
		return "", fmt.Errorf("--copy needs a local file, got %q", locator)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	dst := filepath.Join(filepath.Dir(manifestPath), filepath.Base(locator))
	if dst == locator {
		return locator, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%s already exists in the package directory", filepath.Base(dst))
	}
	if _, err := fileutil.CopyVerified(locator, dst, cfg.Manifest.ChecksumAlgorithm); err != nil {
		return "", fmt.Errorf("copy into package: %w", err)
	}
	return dst, nil
}

// decorate applies the optional add flags to elements that support them.
func decorate(el manifest.Element, tags []string, ref *manifest.Reference, description string) {
	if tagger, ok := el.(interface{ AddTag(string) }); ok {
		for _, tag := range tags {
			tagger.AddTag(tag)
		}
	}
	if referrer, ok := el.(interface{ ReferTo(manifest.Reference) }); ok && ref != nil {
		referrer.ReferTo(*ref)
	}
	if describer, ok := el.(interface{ SetDescription(string) }); ok && description != "" {
		describer.SetDescription(description)
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <manifest.xml> <element-id>",
		Short: "Remove an element from a media package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.manifestPath(args[0])
			if err != nil {
				return err
			}
			opts, err := ctx.packageOptions(cmd, path)
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[1])
			var removed manifest.Element
			err = mediapackage.Update(cmd.Context(), path, false, func(p *mediapackage.Package) error {
				el, found, err := p.RemoveByID(id)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("element %q not found in %s", id, path)
				}
				removed = el
				return nil
			}, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", removed.Kind(), removed.ID())
			return nil
		},
	}
}
