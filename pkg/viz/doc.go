// Package viz builds the dashboard data of one dataset.
//
// A Pipeline fetches meta/info.json, detects the format version and then runs
// the per-metric fetchers that version supports, concurrently. Every metric
// has its own State, so one failed fetch never affects another:
//
//	pipeline, _ := viz.NewClientPipeline(client, nil)
//	snap := pipeline.Build(ctx, robodash.MustParseRef("lerobot/pusht"))
//	if snap.Lengths.Ready() {
//	    fmt.Println(snap.Lengths.Data)
//	}
//
// A Panel keeps the snapshot of whichever dataset was loaded last. Results of
// an older load that finish after a newer one started are dropped.
package viz
