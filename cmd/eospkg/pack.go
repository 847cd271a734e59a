package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/eospkg"
)

type packOptions struct {
	kind       string
	profile    string
	name       string
	id         string
	version    string
	manifest   string
	order      string
	strict     bool
	noProgress bool
}

func newPackCmd(a *app) *cobra.Command {
	var o packOptions

	cmd := &cobra.Command{
		Use:   "pack <DIR> <OUTPUT>",
		Short: "Build a package from a directory",
		Long: `Build a package from the contents of DIR and write it to OUTPUT.

Name, id and version are read from DIR/manifest.json when present. Values
given on the command line take precedence.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPack(cmd, args[0], args[1], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.kind, "type", "t", "app", "Package type: app or watchface")
	f.StringVar(&o.profile, "profile", "fixed", "Header profile: fixed or variable")
	f.StringVar(&o.name, "name", "", "Package name")
	f.StringVar(&o.id, "id", "", "Package id")
	f.StringVar(&o.version, "version", "", "Package version")
	f.StringVar(&o.manifest, "manifest", "", "Manifest file (default DIR/manifest.json)")
	f.StringVar(&o.order, "order", "lexical", "Entry order: lexical or grouped")
	f.BoolVar(&o.strict, "strict", false, "Fail if a source file changes while it is packed")
	f.BoolVar(&o.noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")
	return cmd
}

func (a *app) runPack(cmd *cobra.Command, srcDir, dest string, o packOptions) error {
	kind, err := eospkg.ParseKind(o.kind)
	if err != nil {
		return usageErr(err)
	}
	profile, err := eospkg.ParseProfile(o.profile)
	if err != nil {
		return usageErr(err)
	}
	order, err := eospkg.ParseOrder(o.order)
	if err != nil {
		return usageErr(err)
	}

	opts := []eospkg.BuildOption{
		eospkg.BuildWithKind(kind),
		eospkg.BuildWithProfile(profile),
		eospkg.BuildWithOrder(order),
		eospkg.BuildWithMetadata(eospkg.Metadata{Name: o.name, ID: o.id, Version: o.version}),
		eospkg.BuildWithLogger(a.logger),
	}
	if cmd.Flags().Changed("manifest") {
		opts = append(opts, eospkg.BuildWithManifest(o.manifest))
	}
	if o.strict {
		opts = append(opts, eospkg.BuildWithChangeDetection(eospkg.ChangeDetectionStrict))
	}

	var bar *byteProgress
	if !o.noProgress {
		bar = newByteProgress(cmd.ErrOrStderr(), eospkg.StageWriting, "packing")
		opts = append(opts, eospkg.BuildWithProgress(bar.update))
	}

	res, err := eospkg.Build(cmd.Context(), srcDir, dest, opts...)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s %d entries, %d bytes, %s\n",
		dest, res.Header.Kind, res.Header.Profile, len(res.Entries), res.TotalSize, res.Digest)
	return nil
}

// usageErr reports an unparsable flag value as a configuration error.
func usageErr(err error) error {
	return fmt.Errorf("%w: %w", eospkg.ErrConfig, err)
}
