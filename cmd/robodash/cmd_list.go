package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jdziat/robodash/internal/catalog"
)

func newListCmd(a *app) *cobra.Command {
	var (
		query  catalog.Query
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the datasets of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.opContext(cmd)
			defer cancel()

			client, err := a.client()
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = a.cfg.Catalog.Limit
			}
			cat := catalog.New(client,
				catalog.WithConcurrency(a.cfg.Catalog.Concurrency),
				catalog.WithLimit(limit),
			)
			all, err := cat.Load(ctx)
			if err != nil {
				return err
			}
			matches := catalog.Filter(all, query)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tVERSION\tUPDATED\tLIKES\tDOWNLOADS")
			for _, d := range matches {
				updated := "-"
				if !d.LastModified.IsZero() {
					updated = d.LastModified.Format("2006-01-02")
				}
				ver := d.Version
				if ver == "" {
					ver = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", d.ID, ver, updated, d.Likes, d.Downloads)
			}
			return tw.Flush()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&query.Search, "search", "s", "", "Substring of the dataset id")
	flags.StringVar(&query.Version, "version", catalog.VersionAll, "Version filter: all, v2 or v3")
	flags.StringVar(&query.Order, "order", catalog.OrderRecent, "Order: recent, downloads or likes")
	flags.IntVar(&limit, "limit", 0, "Maximum datasets to list (default: from config)")
	flags.BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
