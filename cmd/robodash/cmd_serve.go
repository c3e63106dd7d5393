package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jdziat/robodash/internal/catalog"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen, prefsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Server.Listen
			}
			if prefsPath == "" {
				prefsPath = a.cfg.Server.PrefsPath
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			store, err := prefs.Open(prefsPath)
			if err != nil {
				return err
			}
			srv, err := server.New(client,
				server.WithCatalog(catalog.New(client,
					catalog.WithConcurrency(a.cfg.Catalog.Concurrency),
					catalog.WithLimit(a.cfg.Catalog.Limit),
				)),
				server.WithPrefs(store),
				server.WithCollector(a.collector),
				server.WithVizConfig(a.cfg.VizConfig()),
				server.WithLoadTimeout(a.cfg.Server.LoadTimeout),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.WithoutCancel(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.logger.Info("starting dashboard",
				zap.String("listen", listen),
				zap.String("namespace", client.Namespace()),
				zap.String("prefs", store.Path()))
			return srv.ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default: from config)")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "Preferences file (default: from config)")
	return cmd
}
