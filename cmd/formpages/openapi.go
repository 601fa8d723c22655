package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpages/pkg/openapi"
	"github.com/goliatone/go-formpages/pkg/pages"
)

func newOpenAPICmd(_ *app) *cobra.Command {
	var (
		output   string
		basePath string
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the JSON submit API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := openapi.Build(pages.Default(), openapi.Options{Title: "formpages", BasePath: basePath})
			if err != nil {
				return err
			}
			if validate {
				if err := openapi.Validate(cmd.Context(), doc); err != nil {
					return err
				}
			}
			data, err := openapi.Marshal(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&basePath, "base-path", openapi.DefaultBasePath, "path prefix of the submit endpoints")
	cmd.Flags().BoolVar(&validate, "validate", true, "validate the document before printing")
	return cmd
}
