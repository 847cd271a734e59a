package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/eospkg"
)

type unpackOptions struct {
	kind       string
	profile    string
	digest     string
	overwrite  bool
	workers    int
	noProgress bool
}

func newUnpackCmd(a *app) *cobra.Command {
	var o unpackOptions

	cmd := &cobra.Command{
		Use:   "unpack <PACKAGE> <DIR>",
		Short: "Extract a package into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUnpack(cmd, args[0], args[1], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.kind, "type", "t", "", "Expected package type: app or watchface (default any)")
	f.StringVar(&o.profile, "profile", "fixed", "Header profile: fixed or variable")
	f.StringVar(&o.digest, "digest", "", "Expected sha256 digest of the package")
	f.BoolVar(&o.overwrite, "overwrite", false, "Replace existing files")
	f.IntVarP(&o.workers, "workers", "w", eospkg.DefaultExtractWorkers, "Number of files extracted concurrently")
	f.BoolVar(&o.noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")
	return cmd
}

func (a *app) runUnpack(cmd *cobra.Command, pkgPath, destDir string, o unpackOptions) error {
	openOpts, err := a.openOptions(o.kind, o.profile, o.digest)
	if err != nil {
		return err
	}

	pf, err := eospkg.OpenFile(pkgPath, openOpts...)
	if err != nil {
		return err
	}
	defer pf.Close()

	extractOpts := []eospkg.ExtractOption{
		eospkg.ExtractWithOverwrite(o.overwrite),
		eospkg.ExtractWithWorkers(o.workers),
	}
	var bar *byteProgress
	if !o.noProgress {
		bar = newByteProgress(cmd.ErrOrStderr(), eospkg.StageExtracting, "unpacking")
		extractOpts = append(extractOpts, eospkg.ExtractWithProgress(bar.update))
	}

	stats, err := pf.Extract(cmd.Context(), destDir, extractOpts...)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d dirs, %d files, %d bytes, %d skipped\n",
		destDir, stats.Dirs, stats.Files, stats.Bytes, stats.Skipped)
	return nil
}

// openOptions translates the shared reader flags. An empty kind accepts
// either magic.
func (a *app) openOptions(kind, profile, dgst string) ([]eospkg.OpenOption, error) {
	p, err := eospkg.ParseProfile(profile)
	if err != nil {
		return nil, usageErr(err)
	}
	opts := []eospkg.OpenOption{
		eospkg.OpenWithProfile(p),
		eospkg.OpenWithLogger(a.logger),
	}
	if kind != "" {
		k, err := eospkg.ParseKind(kind)
		if err != nil {
			return nil, usageErr(err)
		}
		opts = append(opts, eospkg.OpenWithKind(k))
	}
	if dgst != "" {
		d, err := eospkg.ParseDigest(dgst)
		if err != nil {
			return nil, err
		}
		opts = append(opts, eospkg.OpenWithDigest(d))
	}
	return opts, nil
}
