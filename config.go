package robodash

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/jdziat/robodash/pkg/config"
)

// ============================================================================
// Hub Types and Constants - Re-exported from pkg/config
// ============================================================================

// Hub names a known dataset-hosting deployment.
type Hub = pkgconfig.Hub

// Hub constants.
const (
	// HubHuggingFace is the public Hugging Face hub.
	HubHuggingFace = pkgconfig.HubHuggingFace
	// HubMirror is the community mirror of the public hub.
	HubMirror = pkgconfig.HubMirror
)

// Default configuration values (re-exported from pkg/config).
const (
	DefaultNamespace           = pkgconfig.DefaultNamespace
	DefaultRevision            = pkgconfig.DefaultRevision
	DefaultTimeout             = pkgconfig.DefaultTimeout
	DefaultUserAgent           = pkgconfig.DefaultUserAgent
	DefaultMaxIdleConns        = pkgconfig.DefaultMaxIdleConns
	DefaultMaxIdleConnsPerHost = pkgconfig.DefaultMaxIdleConnsPerHost
	DefaultIdleConnTimeout     = pkgconfig.DefaultIdleConnTimeout
	DefaultRowsLength          = pkgconfig.DefaultRowsLength
	MaxRowsLength              = pkgconfig.MaxRowsLength
	MaxTimeout                 = pkgconfig.MaxTimeout
	MinTimeout                 = pkgconfig.MinTimeout

	// DefaultMaxResponseBytes bounds how much of a response body is read.
	DefaultMaxResponseBytes = 256 << 20
)

// Config holds the configuration for the client.
type Config struct {
	// Hub selects preset base URLs. HubURL and RowsURL override it.
	// Defaults to HubHuggingFace.
	Hub Hub

	// HubURL is the base URL of the listing API and raw file resolution,
	// e.g. "https://huggingface.co".
	HubURL string

	// RowsURL is the base URL of the dataset viewer rows endpoint.
	RowsURL string

	// Namespace is the owner whose datasets are listed. Defaults to "lerobot".
	Namespace string

	// Revision is the git revision raw files are resolved at. Defaults to "main".
	Revision string

	// HTTPClient is the HTTP client to use for requests.
	// If not set, a default client with sensible timeouts will be used.
	HTTPClient *http.Client

	// Timeout is the request timeout of the default HTTP client.
	// Defaults to 30 seconds if not set.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxResponseBytes bounds how much of a response body is read.
	// Larger bodies fail the request.
	MaxResponseBytes int64

	// Debug enables debug logging to stderr when no logger is set.
	Debug bool

	// StructuredLogger is used for SDK logging. Compatible with slog via
	// NewSlogAdapter and zap via NewZapAdapter.
	StructuredLogger StructuredLogger

	// Metrics is used for SDK telemetry.
	// If nil, no metrics are collected.
	Metrics Metrics

	// HTTPHooks are called before and after each HTTP request, in order.
	// A hook error from BeforeRequest aborts the request.
	HTTPHooks []HTTPHook

	// MaxIdleConns controls the maximum number of idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum number of idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration
}

// String returns a string representation of the config for logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Hub: %q, HubURL: %q, RowsURL: %q, Namespace: %q, Revision: %q, Timeout: %v}",
		c.Hub,
		c.HubURL,
		c.RowsURL,
		c.Namespace,
		c.Revision,
		c.Timeout,
	)
}

// applyDefaults sets default values for unset configuration options.
func (c *Config) applyDefaults() {
	if c.Hub == "" {
		c.Hub = HubHuggingFace
	}
	endpoints := c.Hub.Endpoints()
	if c.HubURL == "" {
		c.HubURL = endpoints.HubURL
	}
	if c.RowsURL == "" {
		c.RowsURL = endpoints.RowsURL
	}
	c.HubURL = strings.TrimSuffix(c.HubURL, "/")
	c.RowsURL = strings.TrimSuffix(c.RowsURL, "/")

	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.Revision == "" {
		c.Revision = DefaultRevision
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxResponseBytes == 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = DefaultIdleConnTimeout
	}

	if c.StructuredLogger == nil {
		if c.Debug {
			c.StructuredLogger = newStderrLogger()
		} else {
			c.StructuredLogger = NopLogger{}
		}
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        c.MaxIdleConns,
				MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
				IdleConnTimeout:     c.IdleConnTimeout,
			},
		}
	}
}

// validate checks that the configuration is valid.
func (c *Config) validate() error {
	if !c.Hub.Valid() {
		return NewValidationError("Hub", fmt.Sprintf("unknown hub %q", c.Hub))
	}
	if err := validateBaseURL("HubURL", c.HubURL); err != nil {
		return err
	}
	if err := validateBaseURL("RowsURL", c.RowsURL); err != nil {
		return err
	}
	if strings.ContainsAny(c.Namespace, "/ ") {
		return NewValidationError("Namespace", "must be a single path segment")
	}
	if strings.ContainsAny(c.Revision, " ") {
		return NewValidationError("Revision", "must not contain spaces")
	}
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return NewValidationError("Timeout", fmt.Sprintf("must be between %v and %v", MinTimeout, MaxTimeout))
	}
	if c.MaxResponseBytes < 0 {
		return NewValidationError("MaxResponseBytes", "must not be negative")
	}
	return nil
}

// Validate reports whether the configuration, after defaults, is usable.
// It does not modify c.
func (c *Config) Validate() error {
	cfg := *c
	cfg.applyDefaults()
	return cfg.validate()
}

func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return NewValidationErrorWithCause(field, "not a valid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewValidationError(field, "scheme must be http or https")
	}
	if u.Host == "" {
		return NewValidationError(field, "host is required")
	}
	return nil
}

// DefaultConfig returns a configuration for the public hub and the default
// namespace.
func DefaultConfig() *Config {
	return &Config{
		Hub:       HubHuggingFace,
		Namespace: DefaultNamespace,
		Revision:  DefaultRevision,
		Timeout:   DefaultTimeout,
	}
}
