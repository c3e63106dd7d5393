package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/viz"
)

func newVizCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "viz <owner/name>",
		Short: "Compute the dashboard metrics of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := robodash.ParseRef(args[0])
			if err != nil {
				return err
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
			snap := pipeline.Build(ctx, ref)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			return printSnapshot(out, snap)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full snapshot as JSON")
	return cmd
}

// printSnapshot writes one status line per metric.
func printSnapshot(w io.Writer, snap *viz.Snapshot) error {
	fmt.Fprintf(w, "%s (%s)\n", snap.Ref, orDash(snap.Version))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tSTATUS\tPOINTS\tSKIPPED\tERROR")
	// Metrics never requested for the version stay idle and are left out.
	row := func(name string, st viz.Status, n, skipped int, msg string) {
		if st == viz.StatusIdle {
			return
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", name, st, n, skipped, msg)
	}
	row("sample", snap.Sample.Status, sampleLen(snap.Sample.Data), snap.Sample.Skipped, snap.Sample.Err)
	row("lengths", snap.Lengths.Status, len(snap.Lengths.Data), snap.Lengths.Skipped, snap.Lengths.Err)
	row("rewards", snap.Rewards.Status, len(snap.Rewards.Data), snap.Rewards.Skipped, snap.Rewards.Err)
	row("mean_rewards", snap.MeanRewards.Status, len(snap.MeanRewards.Data), snap.MeanRewards.Skipped, snap.MeanRewards.Err)
	row("magnitudes", snap.Magnitudes.Status, len(snap.Magnitudes.Data), snap.Magnitudes.Skipped, snap.Magnitudes.Err)
	row("tasks", snap.Tasks.Status, len(snap.Tasks.Data), snap.Tasks.Skipped, snap.Tasks.Err)
	row("length_vs_reward", snap.LengthVsReward.Status, len(snap.LengthVsReward.Data), snap.LengthVsReward.Skipped, snap.LengthVsReward.Err)
	row("total_rewards", snap.TotalRewards.Status, len(snap.TotalRewards.Data), snap.TotalRewards.Skipped, snap.TotalRewards.Err)
	row("deltas", snap.Deltas.Status, len(snap.Deltas.Data), snap.Deltas.Skipped, snap.Deltas.Err)
	row("joints", snap.Joints.Status, len(snap.Joints.Data), snap.Joints.Skipped, snap.Joints.Err)
	row("tasks_per_episode", snap.TasksPerEpisode.Status, len(snap.TasksPerEpisode.Data), snap.TasksPerEpisode.Skipped, snap.TasksPerEpisode.Err)
	if err := tw.Flush(); err != nil {
		return err
	}

	if msg := snap.SummaryMessage(); msg != "" {
		fmt.Fprintln(w, msg)
	}
	if msg := snap.Fallback(); msg != "" {
		fmt.Fprintln(w, msg)
	}
	return nil
}

func sampleLen(s *viz.Sample) int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newMetaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <owner/name>",
		Short: "Print the metadata document of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := robodash.ParseRef(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.opContext(cmd)
			defer cancel()

			client, err := a.client()
			if err != nil {
				return err
			}
			doc, err := client.Files().Info(ctx, ref)
			if err != nil {
				return err
			}
			pretty, err := doc.Pretty()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return err
		},
	}
}

func newVideosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "videos <owner/name>",
		Short: "List the playable videos of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := robodash.ParseRef(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.opContext(cmd)
			defer cancel()

			client, err := a.client()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range client.Datasets().Videos(ctx, ref) {
				fmt.Fprintf(out, "%s\t%s\n", v.Path, v.URL)
			}
			return nil
		},
	}
}
