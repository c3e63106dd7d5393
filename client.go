package robodash

import (
	"net/url"
	"strings"
	"time"
)

// Client is the robodash hub client.
type Client struct {
	config    *Config
	http      *httpClient
	createdAt time.Time

	// Sub-clients
	datasets *DatasetsClient
	files    *FilesClient
	rows     *RowsClient
}

// New creates a new client.
func New(opts ...ConfigOption) (*Client, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a new client from a Config struct.
//
// Example:
//
//	client, err := robodash.NewWithConfig(&robodash.Config{
//	    Namespace: "lerobot",
//	    Timeout:   10 * time.Second,
//	})
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	// Make a copy to avoid modifying the original
	cfgCopy := *cfg
	cfgCopy.HTTPHooks = append([]HTTPHook(nil), cfg.HTTPHooks...)

	cfgCopy.applyDefaults()

	if err := cfgCopy.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:    &cfgCopy,
		http:      newHTTPClient(&cfgCopy),
		createdAt: time.Now(),
	}
	c.datasets = &DatasetsClient{client: c}
	c.files = &FilesClient{client: c}
	c.rows = &RowsClient{client: c}

	c.config.StructuredLogger.Debug("robodash client created",
		"hub", cfgCopy.HubURL,
		"rows", cfgCopy.RowsURL,
		"namespace", cfgCopy.Namespace,
	)
	return c, nil
}

// Datasets returns the datasets sub-client.
func (c *Client) Datasets() *DatasetsClient { return c.datasets }

// Files returns the raw files sub-client.
func (c *Client) Files() *FilesClient { return c.files }

// Rows returns the rows sub-client.
func (c *Client) Rows() *RowsClient { return c.rows }

// Namespace returns the configured namespace.
func (c *Client) Namespace() string { return c.config.Namespace }

// Logger returns the client's logger. It is never nil.
func (c *Client) Logger() StructuredLogger { return c.config.StructuredLogger }

// Metrics returns the client's metrics collector, or NopMetrics.
func (c *Client) Metrics() Metrics {
	if c.config.Metrics == nil {
		return NopMetrics{}
	}
	return c.config.Metrics
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	cfg := *c.config
	cfg.HTTPHooks = append([]HTTPHook(nil), c.config.HTTPHooks...)
	return cfg
}

// CloseIdleConnections closes idle keep-alive connections of the underlying
// HTTP client. The client stays usable.
func (c *Client) CloseIdleConnections() {
	if c.config.HTTPClient != nil {
		c.config.HTTPClient.CloseIdleConnections()
	}
}

// ResolveURL returns the raw file URL of a repository-relative path at the
// configured revision, e.g.
//
//	https://huggingface.co/datasets/lerobot/pusht/resolve/main/meta/info.json
func (c *Client) ResolveURL(ref DatasetRef, filePath string) string {
	return c.hubURL("datasets", ref.Owner, ref.Name, "resolve", c.config.Revision) + "/" + escapePath(filePath)
}

// DatasetURL returns the human-facing page of a dataset on the hub.
func (c *Client) DatasetURL(ref DatasetRef) string {
	return c.hubURL("datasets", ref.Owner, ref.Name)
}

// hubURL joins escaped path segments onto the hub base URL.
func (c *Client) hubURL(segments ...string) string {
	return joinURL(c.config.HubURL, segments...)
}

func joinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func withQuery(rawURL string, q url.Values) string {
	if len(q) == 0 {
		return rawURL
	}
	return rawURL + "?" + q.Encode()
}
