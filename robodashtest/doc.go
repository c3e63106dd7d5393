// Package robodashtest provides testing utilities for code built on the
// robodash client.
//
// # Mock Server
//
// MockServer is a small fake hub. It serves the listing, detail, raw file
// and rows endpoints from content registered by the test, and records every
// request:
//
//	server := robodashtest.NewMockServer()
//	defer server.Close()
//
//	server.AddDataset(robodash.Dataset{ID: "lerobot/pusht"})
//	server.SetJSONFile("lerobot/pusht", "meta/info.json", map[string]any{
//	    "codebase_version": "v2.1",
//	})
//
//	client, _ := robodash.New(
//	    robodash.WithHubURL(server.URL),
//	    robodash.WithRowsURL(server.URL),
//	)
//
// Anything not registered answers 404 with {"error": "Entry not found"}, the
// way the hub does.
//
// # Test Client
//
// NewTestClient wires a client to a fresh MockServer and closes both when the
// test ends:
//
//	func TestMyFeature(t *testing.T) {
//	    client, server := robodashtest.NewTestClient(t)
//	    server.SetFile("lerobot/pusht", "meta/episodes.jsonl", []byte(`{"length":5}`))
//	    // ...
//	    if !server.HasRequestWithPath("/datasets/lerobot/pusht/resolve/main/meta/episodes.jsonl") {
//	        t.Error("episodes were not fetched")
//	    }
//	}
//
// # Mock Metrics and Logger
//
// MockMetrics and MockLogger record what the client reports:
//
//	metrics := robodashtest.NewMockMetrics()
//	logger := robodashtest.NewMockLogger()
//	client, server := robodashtest.NewTestClientWithConfig(t,
//	    robodash.WithMetrics(metrics),
//	    robodash.WithStructuredLogger(logger),
//	)
package robodashtest
