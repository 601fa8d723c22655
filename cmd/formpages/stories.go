package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/stories"
)

func newStoriesCmd(_ *app) *cobra.Command {
	var (
		asHTML bool
		prefix string
		output string
	)
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List the preview stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := stories.Default()
			if err := registry.Check(pages.Default()); err != nil {
				return err
			}
			if asHTML {
				index, err := stories.NewIndex()
				if err != nil {
					return err
				}
				out, err := index.Render("Stories", prefix, registry.List())
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, []byte(out))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPAGE\tLOCALE")
			for _, story := range registry.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", story.ID, story.Title, story.Page, story.Locale)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "render the HTML index instead of a table")
	cmd.Flags().StringVar(&prefix, "prefix", "/dev/stories", "link prefix used by the HTML index")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
