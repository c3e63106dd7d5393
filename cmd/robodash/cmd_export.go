package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/internal/publish"
	"github.com/jdziat/robodash/internal/render"
	"github.com/jdziat/robodash/pkg/viz"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		target string
		dark   bool
	)

	cmd := &cobra.Command{
		Use:   "export <owner/name>...",
		Short: "Render dashboards to HTML and publish them",
		Long: `Render the dashboard of each dataset to a standalone HTML page and publish it
to a directory or to s3://bucket/prefix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]robodash.DatasetRef, len(args))
			for i, arg := range args {
				ref, err := robodash.ParseRef(arg)
				if err != nil {
					return err
				}
				refs[i] = ref
			}
			if target == "" {
				target = a.cfg.Publish.Target
			}

			ctx, cancel := a.opContext(cmd)
			defer cancel()

			client, err := a.client()
			if err != nil {
				return err
			}
			cfg := a.cfg.VizConfig()
			cfg.Metrics = a.collector
			pipeline, err := viz.NewClientPipeline(client, cfg)
			if err != nil {
				return err
			}
			pub, err := publish.For(ctx, target)
			if err != nil {
				return err
			}

			st := prefs.Default()
			st.DarkMode = dark
			for _, ref := range refs {
				var (
					snap   *viz.Snapshot
					videos []robodash.Video
					g      errgroup.Group
				)
				g.Go(func() error {
					snap = pipeline.Build(ctx, ref)
					return nil
				})
				g.Go(func() error {
					videos = client.Datasets().Videos(ctx, ref)
					return nil
				})
				_ = g.Wait()

				var buf bytes.Buffer
				if err := render.Dashboard(&buf, render.DashboardView{Snapshot: snap, Videos: videos, Prefs: st}); err != nil {
					return err
				}
				location, err := pub.Publish(ctx, ref.Owner+"_"+ref.Name+".html", buf.Bytes(), "text/html; charset=utf-8")
				if err != nil {
					return fmt.Errorf("publish %s: %w", ref, err)
				}
				a.logger.Info("exported dashboard", zap.String("dataset", ref.String()), zap.String("location", location))
				fmt.Fprintln(cmd.OutOrStdout(), location)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Directory or s3://bucket/prefix (default: from config)")
	cmd.Flags().BoolVar(&dark, "dark", false, "Render in dark mode")
	return cmd
}
