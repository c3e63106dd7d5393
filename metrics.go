package robodash

import (
	"encoding/json"
	"net/http"
	"time"
)

// ClientStats is a snapshot of client counters.
type ClientStats struct {
	Uptime      string `json:"uptime"`
	UptimeNanos int64  `json:"uptime_nanos"`

	HubURL    string `json:"hub_url"`
	RowsURL   string `json:"rows_url"`
	Namespace string `json:"namespace"`

	// Requests counts round trips actually sent.
	Requests int64 `json:"requests"`
	// Coalesced counts calls that shared another caller's round trip.
	Coalesced int64 `json:"coalesced"`
	// Failures counts round trips that ended in an error.
	Failures int64 `json:"failures"`
}

// Uptime returns how long ago the client was created.
func (c *Client) Uptime() time.Duration {
	return time.Since(c.createdAt)
}

// Stats returns a snapshot of the client counters. It is safe to call
// concurrently.
func (c *Client) Stats() ClientStats {
	up := c.Uptime()
	return ClientStats{
		Uptime:      up.String(),
		UptimeNanos: up.Nanoseconds(),
		HubURL:      c.config.HubURL,
		RowsURL:     c.config.RowsURL,
		Namespace:   c.config.Namespace,
		Requests:    c.http.requests.Load(),
		Coalesced:   c.http.coalesced.Load(),
		Failures:    c.http.failures.Load(),
	}
}

// StatsHandler returns an http.Handler that serves client statistics as JSON.
//
// Example:
//
//	http.Handle("/debug/robodash", client.StatsHandler())
func (c *Client) StatsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(c.Stats()); err != nil {
			http.Error(w, "Failed to encode stats", http.StatusInternalServerError)
		}
	})
}

// HealthHandler returns an http.Handler for liveness checks. The client has
// no background state, so it reports healthy while the process serves.
func (c *Client) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := struct {
			Status    string `json:"status"`
			Namespace string `json:"namespace"`
			Uptime    string `json:"uptime"`
		}{
			Status:    "healthy",
			Namespace: c.config.Namespace,
			Uptime:    c.Uptime().Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
}
