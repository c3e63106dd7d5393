// Package robodash provides a Go client and aggregation toolkit for robotics
// datasets published on a Hugging Face style dataset hub.
//
// The client lists the datasets of one namespace, fetches dataset detail and
// file listings, resolves raw repository files and samples rows from the
// dataset viewer. Packages under pkg/ turn those documents into dashboard
// data: pkg/format knows the on-disk layouts per codebase version, pkg/viz
// runs the per-metric fetchers and pkg/stats does the arithmetic.
//
// # Quick Start
//
//	client, err := robodash.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	datasets, err := client.Datasets().List(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ds := range datasets {
//	    fmt.Println(ds.ID, ds.Downloads)
//	}
//
//	ref, _ := robodash.ParseRef("lerobot/aloha_sim_insertion_human")
//	info, err := client.Files().Info(ctx, ref)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Version())
//
// # Configuration
//
// The client is configured with functional options:
//
//	client, err := robodash.New(
//	    robodash.WithNamespace("lerobot"),
//	    robodash.WithTimeout(10*time.Second),
//	    robodash.WithStructuredLogger(robodash.NewSlogAdapter(slog.Default())),
//	)
//
// or from ROBODASH_* environment variables with NewFromEnv.
//
// # Requests
//
// Every call is a single GET. There is no retry and no caching. Identical
// raw-file and rows requests that are in flight at the same time are
// coalesced into one round trip.
//
// # Thread Safety
//
// The Client and its sub-clients are safe for concurrent use.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError and match the status
// sentinels with errors.Is:
//
//	_, err := client.Files().Stats(ctx, ref)
//	if errors.Is(err, robodash.ErrNotFound) {
//	    // the dataset has no global statistics
//	}
package robodash
