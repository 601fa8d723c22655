package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpages/pkg/orchestrator"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/theme"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		renderer   string
		locale     string
		output     string
		props      map[string]string
		standalone bool
		themeName  string
		variant    string
	)
	cmd := &cobra.Command{
		Use:   "render <page>",
		Short: "Render a page to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			opts := render.RenderOptions{Standalone: standalone}
			if standalone {
				if themeName == "" {
					themeName = a.cfg.Theme.Name
				}
				if variant == "" {
					variant = a.cfg.Theme.Variant
				}
				selector, err := theme.NewSelector(themeName, variant, theme.USWDS())
				if err != nil {
					return err
				}
				if opts.Theme, err = selector.Resolve("", ""); err != nil {
					return err
				}
			}
			out, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Page:          args[0],
				Props:         pages.Props(props),
				Locale:        a.locale(locale),
				Renderer:      renderer,
				RenderOptions: opts,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "html", "renderer to use (html, json)")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale (defaults to config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringToStringVarP(&props, "prop", "p", nil, "page prop as key=value")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "wrap the form in a full HTML document")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name for standalone output")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant for standalone output")
	return cmd
}
