package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/eospkg"
)

type inspectOptions struct {
	kind    string
	profile string
	noTable bool
}

func newInspectCmd(a *app) *cobra.Command {
	var o inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <PACKAGE>",
		Short: "Print the header, layout and entry table of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.kind, "type", "t", "", "Expected package type: app or watchface (default any)")
	f.StringVar(&o.profile, "profile", "fixed", "Header profile: fixed or variable")
	f.BoolVar(&o.noTable, "no-table", false, "Omit the entry table")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, pkgPath string, o inspectOptions) error {
	opts, err := a.openOptions(o.kind, o.profile, "")
	if err != nil {
		return err
	}
	res, err := eospkg.Inspect(pkgPath, opts...)
	if err != nil {
		return err
	}
	return printInspect(cmd.OutOrStdout(), res, !o.noTable)
}

func printInspect(w io.Writer, res *eospkg.InspectResult, table bool) error {
	h := res.Header()
	magic, err := h.Kind.Magic()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "kind:\t%s (%s)\n", h.Kind, magic[:])
	fmt.Fprintf(tw, "profile:\t%s\n", h.Profile)
	fmt.Fprintf(tw, "name:\t%s\n", h.Name)
	fmt.Fprintf(tw, "id:\t%s\n", h.ID)
	fmt.Fprintf(tw, "version:\t%s\n", h.Version)
	fmt.Fprintf(tw, "entries:\t%d (%d dirs, %d files)\n", h.EntryCount, res.DirCount(), res.FileCount())
	fmt.Fprintf(tw, "table offset:\t%d\n", res.TableOffset())
	fmt.Fprintf(tw, "data start:\t%d\n", res.DataStart())
	fmt.Fprintf(tw, "data size:\t%d\n", res.DataSize())
	fmt.Fprintf(tw, "total size:\t%d\n", res.Size())
	fmt.Fprintf(tw, "digest:\t%s\n", res.Digest())
	if err := tw.Flush(); err != nil {
		return err
	}
	if !table {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TYPE\tOFFSET\tSIZE\t PATH")
	for _, e := range res.Entries() {
		switch v := e.(type) {
		case eospkg.Dir:
			fmt.Fprintf(tw, "dir\t-\t-\t %s/\n", v.Path)
		case eospkg.File:
			fmt.Fprintf(tw, "file\t%d\t%d\t %s\n", v.Offset, v.Size, v.Path)
		}
	}
	return tw.Flush()
}
