package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/robodashtest"
)

func newHub(t *testing.T) *robodashtest.MockServer {
	t.Helper()
	hub := robodashtest.NewMockServer()
	t.Cleanup(hub.Close)

	hub.AddDataset(robodash.Dataset{ID: "lerobot/pusht", LastModified: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Likes: 4})
	hub.SetJSONFile("lerobot/pusht", "meta/info.json", map[string]any{"codebase_version": "v2.0", "fps": 10})
	hub.SetJSONLines("lerobot/pusht", "meta/episodes.jsonl",
		map[string]any{"episode_index": 0, "length": 5, "tasks": []string{"push"}},
		map[string]any{"episode_index": 1, "length": 15, "tasks": []string{"push"}},
	)
	hub.SetFile("lerobot/pusht", "videos/episode_000000.mp4", []byte("mp4"))

	hub.AddDataset(robodash.Dataset{ID: "lerobot/aloha_sim", LastModified: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)})
	hub.SetJSONFile("lerobot/aloha_sim", "meta/info.json", map[string]any{"codebase_version": "v3.0"})
	return hub
}

func writeConfig(t *testing.T, hubURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".robodash.yaml")
	content := "hub:\n  url: " + hubURL + "\n  rows_url: " + hubURL + "\n  namespace: lerobot\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("output %q does not contain version", out)
	}
}

func TestListCmd(t *testing.T) {
	hub := newHub(t)
	cfg := writeConfig(t, hub.URL)

	out, err := runCLI(t, "list", "--config", cfg)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"DATASET", "lerobot/pusht", "v2.0", "lerobot/aloha_sim", "v3.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "aloha_sim") > strings.Index(out, "pusht") {
		t.Errorf("expected most recent first:\n%s", out)
	}

	out, err = runCLI(t, "list", "--config", cfg, "--version", "v2", "--json")
	if err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
	if !strings.Contains(out, `"id": "lerobot/pusht"`) || strings.Contains(out, "aloha_sim") {
		t.Errorf("unexpected filtered output:\n%s", out)
	}
}

func TestVizCmd(t *testing.T) {
	hub := newHub(t)
	cfg := writeConfig(t, hub.URL)

	out, err := runCLI(t, "viz", "--config", cfg, "lerobot/pusht")
	if err != nil {
		t.Fatalf("viz failed: %v", err)
	}
	if !strings.Contains(out, "lerobot/pusht (v2.0)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "lengths") || !strings.Contains(out, "ready") {
		t.Errorf("missing lengths row:\n%s", out)
	}

	out, err = runCLI(t, "viz", "--config", cfg, "lerobot/aloha_sim")
	if err != nil {
		t.Fatalf("viz v3 failed: %v", err)
	}
	if !strings.Contains(out, "no global statistics available") {
		t.Errorf("missing summary message:\n%s", out)
	}

	if _, err := runCLI(t, "viz", "--config", cfg, "not-a-ref"); err == nil {
		t.Error("expected an error for an invalid reference")
	}
}

func TestMetaAndVideosCmd(t *testing.T) {
	hub := newHub(t)
	cfg := writeConfig(t, hub.URL)

	out, err := runCLI(t, "meta", "--config", cfg, "lerobot/pusht")
	if err != nil {
		t.Fatalf("meta failed: %v", err)
	}
	if !strings.Contains(out, `"codebase_version": "v2.0"`) {
		t.Errorf("unexpected meta output:\n%s", out)
	}

	out, err = runCLI(t, "videos", "--config", cfg, "lerobot/pusht")
	if err != nil {
		t.Fatalf("videos failed: %v", err)
	}
	if !strings.Contains(out, "videos/episode_000000.mp4") {
		t.Errorf("unexpected videos output:\n%s", out)
	}
}

func TestExportCmd(t *testing.T) {
	hub := newHub(t)
	cfg := writeConfig(t, hub.URL)
	dir := t.TempDir()

	out, err := runCLI(t, "export", "--config", cfg, "--target", dir, "lerobot/pusht")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	path := filepath.Join(dir, "lerobot_pusht.html")
	if !strings.Contains(out, "lerobot_pusht.html") {
		t.Errorf("output %q does not name the report", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "lerobot/pusht") {
		t.Error("report does not mention the dataset")
	}
}
