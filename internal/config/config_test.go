package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/viz"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Hub.Namespace != "lerobot" {
		t.Errorf("expected default namespace to be lerobot, got %s", cfg.Hub.Namespace)
	}
	if cfg.Charts.LengthBinWidth != 10 {
		t.Errorf("expected length bin width 10, got %d", cfg.Charts.LengthBinWidth)
	}
	if cfg.Charts.StepSampleSize != 1000 {
		t.Errorf("expected step sample size 1000, got %d", cfg.Charts.StepSampleSize)
	}
	if cfg.Server.Listen == "" {
		t.Error("expected a default listen address")
	}
	if cfg.Catalog.Concurrency <= 0 {
		t.Errorf("expected positive catalog concurrency, got %d", cfg.Catalog.Concurrency)
	}
}

func TestLoadFrom_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
hub:
  namespace: my-org
  timeout: 45s
charts:
  length_bin_width: 25
  top_tasks: 5
server:
  listen: ":9000"
`
	if err := os.WriteFile(filepath.Join(root, ".robodash.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(nested)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Path != filepath.Join(root, ".robodash.yml") {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Hub.Namespace != "my-org" {
		t.Errorf("Namespace = %q, want my-org", cfg.Hub.Namespace)
	}
	if cfg.Hub.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Hub.Timeout)
	}
	if cfg.Charts.LengthBinWidth != 25 || cfg.Charts.TopTasks != 5 {
		t.Errorf("Charts = %+v", cfg.Charts)
	}
	// Unset values keep their defaults.
	if cfg.Charts.RewardBinWidth != viz.DefaultRewardBinWidth {
		t.Errorf("RewardBinWidth = %v", cfg.Charts.RewardBinWidth)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
}

func TestLoadFrom_YAMLPreferredOverYML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".robodash.yaml"), []byte("hub:\n  namespace: first\n"), 0o644)
	os.WriteFile(filepath.Join(dir, ".robodash.yml"), []byte("hub:\n  namespace: second\n"), 0o644)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Hub.Namespace != "first" {
		t.Errorf("Namespace = %q, want first", cfg.Hub.Namespace)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".robodash.yaml"), []byte("hub: [unclosed"), 0o644)

	if _, err := LoadFrom(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".robodash.yaml"), []byte("hub:\n  namespace: from-file\n"), 0o644)

	t.Setenv("ROBODASH_NAMESPACE", "from-env")
	t.Setenv("ROBODASH_TIMEOUT", "12s")
	t.Setenv(EnvListen, ":7000")
	t.Setenv(EnvCatalogLimit, "20")
	t.Setenv("REPORT_BUCKET", "my-bucket")
	t.Setenv(EnvPublishTarget, "s3://${REPORT_BUCKET}/daily")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Hub.Namespace != "from-env" {
		t.Errorf("Namespace = %q, want from-env", cfg.Hub.Namespace)
	}
	if cfg.Hub.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v", cfg.Hub.Timeout)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Catalog.Limit != 20 {
		t.Errorf("Limit = %d", cfg.Catalog.Limit)
	}
	if cfg.Publish.Target != "s3://my-bucket/daily" {
		t.Errorf("Target = %q", cfg.Publish.Target)
	}
}

func TestLoadFrom_BadEnv(t *testing.T) {
	t.Setenv("ROBODASH_TIMEOUT", "soon")
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_VAR", "value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "value"},
		{"$TEST_VAR", "value"},
		{"", ""},
		{"plain", "plain"},
		{"prefix-${TEST_VAR}-suffix", "prefix-value-suffix"},
		{"${ROBODASH_UNSET_VAR}", ""},
	}
	for _, tt := range tests {
		if got := expandEnvVar(tt.input); got != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestClientOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hub.URL = "http://127.0.0.1:1"
	cfg.Hub.Namespace = "acme"

	client, err := robodash.New(cfg.ClientOptions()...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.CloseIdleConnections()

	if client.Namespace() != "acme" {
		t.Errorf("Namespace() = %q", client.Namespace())
	}
	if got := client.Config().HubURL; got != "http://127.0.0.1:1" {
		t.Errorf("HubURL = %q", got)
	}
}

func TestVizConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Charts.DeltaBinWidth = 0.5

	vc := cfg.VizConfig()
	if vc.DeltaBinWidth != 0.5 {
		t.Errorf("DeltaBinWidth = %v", vc.DeltaBinWidth)
	}
	if _, err := viz.NewPipeline(viz.ClientSource{}, vc); err != nil {
		t.Errorf("NewPipeline() error = %v", err)
	}
}
