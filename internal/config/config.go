// Package config loads the robodash command configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jdziat/robodash"
	pkgconfig "github.com/jdziat/robodash/pkg/config"
	"github.com/jdziat/robodash/pkg/viz"
)

// FileNames are the configuration file names looked up, in order.
var FileNames = []string{".robodash.yaml", ".robodash.yml"}

// Environment variables read on top of the file. The hub settings use the
// SDK variables.
const (
	EnvListen        = "ROBODASH_LISTEN"
	EnvPrefsPath     = "ROBODASH_PREFS"
	EnvPublishTarget = "ROBODASH_PUBLISH_TARGET"
	EnvCatalogLimit  = "ROBODASH_CATALOG_LIMIT"
)

// Config represents the complete command configuration.
type Config struct {
	Hub     HubConfig     `yaml:"hub"`
	Charts  ChartsConfig  `yaml:"charts"`
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Publish PublishConfig `yaml:"publish"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// HubConfig selects the hub and dataset namespace.
type HubConfig struct {
	Hub       string        `yaml:"hub"`
	URL       string        `yaml:"url"`
	RowsURL   string        `yaml:"rows_url"`
	Namespace string        `yaml:"namespace"`
	Revision  string        `yaml:"revision"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ChartsConfig holds the chart parameters.
type ChartsConfig struct {
	LengthBinWidth    int     `yaml:"length_bin_width"`
	RewardBinWidth    float64 `yaml:"reward_bin_width"`
	MagnitudeBinWidth float64 `yaml:"magnitude_bin_width"`
	DeltaBinWidth     float64 `yaml:"delta_bin_width"`
	StepSampleSize    int     `yaml:"step_sample_size"`
	TableSampleSize   int     `yaml:"table_sample_size"`
	TopTasks          int     `yaml:"top_tasks"`
}

// CatalogConfig configures the dataset listing.
type CatalogConfig struct {
	// Limit bounds the listing; 0 lists everything the hub returns.
	Limit int `yaml:"limit"`
	// Concurrency bounds parallel version lookups.
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Listen      string        `yaml:"listen"`
	PrefsPath   string        `yaml:"prefs_path"`
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

// PublishConfig configures report export.
type PublishConfig struct {
	// Target is a directory or an s3://bucket/prefix URL.
	Target string `yaml:"target"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Hub: HubConfig{
			Hub:       string(pkgconfig.HubHuggingFace),
			Namespace: pkgconfig.DefaultNamespace,
			Revision:  pkgconfig.DefaultRevision,
			Timeout:   pkgconfig.DefaultTimeout,
		},
		Charts: ChartsConfig{
			LengthBinWidth:    viz.DefaultLengthBinWidth,
			RewardBinWidth:    viz.DefaultRewardBinWidth,
			MagnitudeBinWidth: viz.DefaultMagnitudeBinWidth,
			DeltaBinWidth:     viz.DefaultDeltaBinWidth,
			StepSampleSize:    viz.DefaultStepSampleSize,
			TableSampleSize:   viz.DefaultTableSampleSize,
			TopTasks:          viz.DefaultTopTasks,
		},
		Catalog: CatalogConfig{
			Concurrency: 8,
		},
		Server: ServerConfig{
			Listen:      "127.0.0.1:8080",
			PrefsPath:   defaultPrefsPath(),
			LoadTimeout: 2 * time.Minute,
		},
		Publish: PublishConfig{
			Target: "reports",
		},
	}
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".robodash-prefs.yaml"
	}
	return filepath.Join(dir, "robodash", "prefs.yaml")
}

// Load reads configuration from the nearest file at or above the working
// directory and from environment variables.
func Load() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = ""
	}
	return LoadFrom(dir)
}

// LoadFrom is Load starting the file search at dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	if path := findConfigFile(dir); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.Path = path
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	expandEnvVars(cfg)

	return cfg, nil
}

// LoadFile reads configuration from exactly path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg.Path = path
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	expandEnvVars(cfg)
	return cfg, nil
}

// findConfigFile searches dir and its parents for a configuration file.
func findConfigFile(dir string) string {
	if dir == "" {
		return ""
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadFromFile reads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(pkgconfig.EnvHub); v != "" {
		cfg.Hub.Hub = v
	}
	if v := os.Getenv(pkgconfig.EnvHubURL); v != "" {
		cfg.Hub.URL = v
	}
	if v := os.Getenv(pkgconfig.EnvRowsURL); v != "" {
		cfg.Hub.RowsURL = v
	}
	if v := os.Getenv(pkgconfig.EnvNamespace); v != "" {
		cfg.Hub.Namespace = v
	}
	if v := os.Getenv(pkgconfig.EnvRevision); v != "" {
		cfg.Hub.Revision = v
	}
	timeout, err := pkgconfig.GetEnvDuration(pkgconfig.EnvTimeout, cfg.Hub.Timeout)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", pkgconfig.EnvTimeout, err)
	}
	cfg.Hub.Timeout = timeout

	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv(EnvPrefsPath); v != "" {
		cfg.Server.PrefsPath = v
	}
	if v := os.Getenv(EnvPublishTarget); v != "" {
		cfg.Publish.Target = v
	}
	if v := os.Getenv(EnvCatalogLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCatalogLimit, err)
		}
		cfg.Catalog.Limit = n
	}
	return nil
}

// expandEnvVars expands ${VAR} references in path-like values.
func expandEnvVars(cfg *Config) {
	cfg.Hub.URL = expandEnvVar(cfg.Hub.URL)
	cfg.Hub.RowsURL = expandEnvVar(cfg.Hub.RowsURL)
	cfg.Server.PrefsPath = expandEnvVar(cfg.Server.PrefsPath)
	cfg.Publish.Target = expandEnvVar(cfg.Publish.Target)
}

var envRef = regexp.MustCompile(`\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?`)

// expandEnvVar expands ${VAR} and $VAR references.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "${")
		name = strings.TrimPrefix(name, "$")
		name = strings.TrimSuffix(name, "}")
		return os.Getenv(name)
	})
}

// ClientOptions converts the hub settings to client options.
func (c *Config) ClientOptions() []robodash.ConfigOption {
	opts := []robodash.ConfigOption{
		robodash.WithNamespace(c.Hub.Namespace),
		robodash.WithRevision(c.Hub.Revision),
		robodash.WithTimeout(c.Hub.Timeout),
	}
	if c.Hub.Hub != "" {
		opts = append(opts, robodash.WithHub(robodash.Hub(c.Hub.Hub)))
	}
	if c.Hub.URL != "" {
		opts = append(opts, robodash.WithHubURL(c.Hub.URL))
	}
	if c.Hub.RowsURL != "" {
		opts = append(opts, robodash.WithRowsURL(c.Hub.RowsURL))
	}
	return opts
}

// VizConfig converts the chart settings to a pipeline configuration.
func (c *Config) VizConfig() *viz.Config {
	return &viz.Config{
		LengthBinWidth:    c.Charts.LengthBinWidth,
		RewardBinWidth:    c.Charts.RewardBinWidth,
		MagnitudeBinWidth: c.Charts.MagnitudeBinWidth,
		DeltaBinWidth:     c.Charts.DeltaBinWidth,
		StepSampleSize:    c.Charts.StepSampleSize,
		TableSampleSize:   c.Charts.TableSampleSize,
		TopTasks:          c.Charts.TopTasks,
	}
}
