package robodash

import (
	"net/http"
	"time"
)

// ConfigOption is a function that modifies a Config.
type ConfigOption func(*Config)

// WithHub selects preset base URLs.
func WithHub(hub Hub) ConfigOption {
	return func(c *Config) {
		c.Hub = hub
	}
}

// WithHubURL sets a custom base URL for the listing API and raw files.
func WithHubURL(hubURL string) ConfigOption {
	return func(c *Config) {
		c.HubURL = hubURL
	}
}

// WithRowsURL sets a custom base URL for the rows endpoint.
func WithRowsURL(rowsURL string) ConfigOption {
	return func(c *Config) {
		c.RowsURL = rowsURL
	}
}

// WithNamespace sets the owner whose datasets are listed.
func WithNamespace(namespace string) ConfigOption {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRevision sets the git revision raw files are resolved at.
func WithRevision(revision string) ConfigOption {
	return func(c *Config) {
		c.Revision = revision
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithMaxResponseBytes bounds how much of a response body is read.
func WithMaxResponseBytes(n int64) ConfigOption {
	return func(c *Config) {
		c.MaxResponseBytes = n
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithStructuredLogger sets a structured logger for the SDK.
//
// Example with slog:
//
//	client, _ := robodash.New(
//	    robodash.WithStructuredLogger(robodash.NewSlogAdapter(slog.Default())),
//	)
func WithStructuredLogger(logger StructuredLogger) ConfigOption {
	return func(c *Config) {
		c.StructuredLogger = logger
	}
}

// WithMetrics sets a metrics collector for SDK telemetry.
func WithMetrics(metrics Metrics) ConfigOption {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) ConfigOption {
	return func(c *Config) {
		c.MaxIdleConns = n
	}
}

// WithMaxIdleConnsPerHost sets the maximum idle connections per host.
func WithMaxIdleConnsPerHost(n int) ConfigOption {
	return func(c *Config) {
		c.MaxIdleConnsPerHost = n
	}
}

// WithIdleConnTimeout sets the idle connection timeout.
func WithIdleConnTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.IdleConnTimeout = d
	}
}

// WithHTTPHooks appends HTTP hooks that run around every request.
//
// Example:
//
//	client, _ := robodash.New(
//	    robodash.WithHTTPHooks(
//	        robodash.HeaderHook(map[string]string{"X-Team": "robots"}),
//	    ),
//	)
func WithHTTPHooks(hooks ...HTTPHook) ConfigOption {
	return func(c *Config) {
		c.HTTPHooks = append(c.HTTPHooks, hooks...)
	}
}
