package robodash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatsHandler(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/datasets/lerobot/pusht/resolve/main/meta/stats.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	})
	client := newTestClient(t, server.URL)
	ref := MustParseRef("lerobot/pusht")

	client.Files().Info(context.Background(), ref)
	client.Files().Stats(context.Background(), ref)

	rec := httptest.NewRecorder()
	client.StatsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/robodash", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var stats ClientStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Requests != 2 || stats.Failures != 1 {
		t.Errorf("Requests/Failures = %d/%d, want 2/1", stats.Requests, stats.Failures)
	}
	if stats.Namespace != "lerobot" || stats.HubURL != server.URL {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestStatsHandler_MethodNotAllowed(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	client.StatsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", WithNamespace("acme"))
	rec := httptest.NewRecorder()
	client.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["namespace"] != "acme" {
		t.Errorf("body = %v", body)
	}
}
