package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			srv, err := server.New(cfg, server.WithLogger(a.logger))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a.logger.Info("starting formpages",
				zap.String("addr", cfg.Server.Addr),
				zap.String("locale", cfg.Locale),
				zap.String("theme", cfg.Theme.Name),
				zap.Bool("stories", cfg.Stories.Enabled),
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

