package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		locale string
		format string
		output string
		props  map[string]string
		submit bool
	)
	cmd := &cobra.Command{
		Use:   "fill <page>",
		Short: "Fill a page interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			loc := a.locale(locale)
			pageProps := pages.Props(props)
			def, form, err := orch.Form(cmd.Context(), args[0], pageProps, loc)
			if err != nil {
				return err
			}
			catalog, err := i18n.Default()
			if err != nil {
				return err
			}

			options := []tui.Option{
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithTranslator(catalog, loc),
				tui.WithValidator(func(ctx context.Context, values model.Values) (map[string][]string, error) {
					errs, err := orch.Validate(ctx, def.ID, loc, values)
					if err != nil {
						return nil, err
					}
					return errs, nil
				}),
			}
			if a.driver != nil {
				options = append(options, tui.WithPromptDriver(a.driver))
			}
			filler := tui.New(options...)

			values, err := filler.Fill(cmd.Context(), form, def.InitialValues(pageProps))
			if err != nil {
				return err
			}
			if submit {
				out, err := orch.SubmitValues(cmd.Context(), def.ID, pageProps, loc, values)
				if err != nil {
					return err
				}
				if !out.Accepted() {
					return fmt.Errorf("submission rejected: %v", out.Errors)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "submitted %s\n", out.Submission.ID)
			}
			data, err := filler.Serialize(form, values)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale (defaults to config)")
	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringToStringVarP(&props, "prop", "p", nil, "page prop as key=value")
	cmd.Flags().BoolVar(&submit, "submit", false, "hand the values to the logging submitter")
	return cmd
}
