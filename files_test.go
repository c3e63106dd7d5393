package robodash

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestFilesClientInfo(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/lerobot/pusht/resolve/main/meta/info.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"codebase_version":"v2.1","total_episodes":206,"fps":10,"splits":{"train":"0:206"}}`))
	})
	client := newTestClient(t, server.URL)

	doc, err := client.Files().Info(context.Background(), MustParseRef("lerobot/pusht"))
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if doc.Version() != "v2.1" {
		t.Errorf("Version() = %q", doc.Version())
	}
	if n, ok := doc.Int("total_episodes"); !ok || n != 206 {
		t.Errorf("total_episodes = %d, %v", n, ok)
	}
}

func TestFilesClientInfo_NotAnObject(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	})
	client := newTestClient(t, server.URL)

	_, err := client.Files().Info(context.Background(), MustParseRef("lerobot/pusht"))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestFilesClientStats_NotFound(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/lerobot/pusht/resolve/main/meta/stats.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		http.Error(w, "Entry not found", http.StatusNotFound)
	})
	client := newTestClient(t, server.URL)

	_, err := client.Files().Stats(context.Background(), MustParseRef("lerobot/pusht"))
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
}

func TestFilesClientRaw_RequiresPath(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	_, err := client.Files().Raw(context.Background(), MustParseRef("lerobot/pusht"), "")
	if CodeOf(err) != ErrCodeValidation {
		t.Errorf("error = %v, want validation error", err)
	}
}
