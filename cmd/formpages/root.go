package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/internal/config"
	"github.com/goliatone/go-formpages/pkg/orchestrator"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/renderers/html"
	"github.com/goliatone/go-formpages/pkg/renderers/jsonform"
	"github.com/goliatone/go-formpages/pkg/renderers/tui"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	logger     *zap.Logger
	// driver overrides the terminal prompts of fill.
	driver tui.PromptDriver
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "formpages",
		Short:         "Form-driven pages: identity intake and example form",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("FORMPAGES_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newOpenAPICmd(a),
		newStoriesCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) locale(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Locale
}

// orchestrator builds the page pipeline with the HTML and JSON renderers.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(htmlRenderer)
	renderers.MustRegister(jsonform.New(jsonform.WithIndent("  ")))
	return orchestrator.New(
		orchestrator.WithRegistry(renderers),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithSchemaTransformer(orchestrator.ActionTransformer("/forms/{id}")),
	), nil
}

// writeOutput writes data to path, or to out when path is empty.
func writeOutput(out io.Writer, path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(out, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
